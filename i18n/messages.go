package i18n

var spanish = map[string]string{
	"required":             "Obligatorio",
	"invalid_email":        "Correo electrónico no válido",
	"invalid_choice":       "Valor no permitido",
	"invalid_date":         "Fecha no válida",
	"must_be_positive":     "Debe ser mayor que cero",
	"must_be_non_negative": "No puede ser negativo",
	"must_be_future":       "Debe ser una fecha posterior a hoy",
	"before_start_date":    "Debe ser igual o posterior a la fecha de inicio",
	"email_taken":          "El correo electrónico ya está registrado",
	"too_long":             "Demasiado largo",

	"client.created": "Cliente creado correctamente",
	"client.updated": "Cliente actualizado correctamente",
	"client.deleted": "Cliente eliminado correctamente",

	"note.created": "Nota creada correctamente",
	"note.updated": "Nota actualizada correctamente",
	"note.deleted": "Nota eliminada correctamente",

	"followup.created":   "Seguimiento creado correctamente",
	"followup.updated":   "Seguimiento actualizado correctamente",
	"followup.deleted":   "Seguimiento eliminado correctamente",
	"followup.completed": "Tarea completada",

	"proposal.created":           "Propuesta creada correctamente",
	"proposal.updated":           "Propuesta actualizada correctamente",
	"proposal.deleted":           "Propuesta eliminada correctamente",
	"proposal.sent":              "Propuesta marcada como enviada",
	"proposal.status_changed":    "Estado de la propuesta actualizado",
	"proposal.followup_recorded": "Seguimiento registrado",
	"proposal.duplicated":        "Propuesta duplicada correctamente",
	"proposal.converted":         "Proyecto creado a partir de la propuesta",

	"project.updated":        "Proyecto actualizado correctamente",
	"project.deleted":        "Proyecto eliminado correctamente",
	"project.status_changed": "Estado del proyecto actualizado",
	"project.started":        "Proyecto iniciado",
	"project.paused":         "Proyecto pausado",
	"project.resumed":        "Proyecto reanudado",
	"project.completed":      "Proyecto completado",

	"task.created":   "Tarea creada correctamente",
	"task.updated":   "Tarea actualizada correctamente",
	"task.deleted":   "Tarea eliminada correctamente",
	"task.toggled":   "Estado de la tarea actualizado",
	"task.reordered": "Tareas reordenadas",

	"auth.logged_in":  "Sesión iniciada",
	"auth.logged_out": "Sesión cerrada",

	"lead.registered":    "¡Gracias! Revisa tu correo para confirmar tu suscripción.",
	"lead.failed":        "No se pudo procesar tu solicitud. Inténtalo de nuevo más tarde.",
	"lead.invalid":       "Los datos enviados no son válidos.",
	"lead.verified":      "Correo confirmado",
	"lead.invalid_token": "El enlace de verificación no es válido",

	"mail.verify_subject": "Confirma tu correo",
	"mail.verify_body":    "Hola, confirma tu suscripción abriendo este enlace: %s",

	"error.bad_request":         "Solicitud no válida",
	"error.validation":          "Revisa los campos marcados",
	"error.unauthorized":        "Debes iniciar sesión",
	"error.invalid_credentials": "Credenciales incorrectas",
	"error.forbidden":           "No tienes permiso para realizar esta acción",
	"error.not_found":           "Recurso no encontrado",
	"error.not_approved":        "Solo las propuestas aprobadas pueden convertirse en proyecto",
	"error.already_converted":   "Esta propuesta ya fue convertida en proyecto",
	"error.invalid_transition":  "Cambio de estado no permitido",
	"error.rate_limited":        "Demasiadas solicitudes, inténtalo más tarde",
	"error.internal":            "Ha ocurrido un error inesperado",
}

var english = map[string]string{
	"required":             "Required",
	"invalid_email":        "Invalid email address",
	"invalid_choice":       "Value not allowed",
	"invalid_date":         "Invalid date",
	"must_be_positive":     "Must be greater than zero",
	"must_be_non_negative": "Cannot be negative",
	"must_be_future":       "Must be a date after today",
	"before_start_date":    "Must be on or after the start date",
	"email_taken":          "Email is already registered",
	"too_long":             "Too long",

	"client.created": "Client created",
	"client.updated": "Client updated",
	"client.deleted": "Client deleted",

	"note.created": "Note created",
	"note.updated": "Note updated",
	"note.deleted": "Note deleted",

	"followup.created":   "Follow-up created",
	"followup.updated":   "Follow-up updated",
	"followup.deleted":   "Follow-up deleted",
	"followup.completed": "Task completed",

	"proposal.created":           "Proposal created",
	"proposal.updated":           "Proposal updated",
	"proposal.deleted":           "Proposal deleted",
	"proposal.sent":              "Proposal marked as sent",
	"proposal.status_changed":    "Proposal status updated",
	"proposal.followup_recorded": "Follow-up recorded",
	"proposal.duplicated":        "Proposal duplicated",
	"proposal.converted":         "Project created from proposal",

	"project.updated":        "Project updated",
	"project.deleted":        "Project deleted",
	"project.status_changed": "Project status updated",
	"project.started":        "Project started",
	"project.paused":         "Project paused",
	"project.resumed":        "Project resumed",
	"project.completed":      "Project completed",

	"task.created":   "Task created",
	"task.updated":   "Task updated",
	"task.deleted":   "Task deleted",
	"task.toggled":   "Task status updated",
	"task.reordered": "Tasks reordered",

	"auth.logged_in":  "Signed in",
	"auth.logged_out": "Signed out",

	"lead.registered":    "Thanks! Check your inbox to confirm your subscription.",
	"lead.failed":        "We could not process your request. Please try again later.",
	"lead.invalid":       "The submitted data is not valid.",
	"lead.verified":      "Email confirmed",
	"lead.invalid_token": "The verification link is not valid",

	"mail.verify_subject": "Confirm your email",
	"mail.verify_body":    "Hi, confirm your subscription by opening this link: %s",

	"error.bad_request":         "Bad request",
	"error.validation":          "Please review the highlighted fields",
	"error.unauthorized":        "You must sign in",
	"error.invalid_credentials": "Invalid credentials",
	"error.forbidden":           "You are not allowed to perform this action",
	"error.not_found":           "Resource not found",
	"error.not_approved":        "Only approved proposals can be converted",
	"error.already_converted":   "This proposal was already converted",
	"error.invalid_transition":  "Status change not allowed",
	"error.rate_limited":        "Too many requests, try again later",
	"error.internal":            "An unexpected error occurred",
}
