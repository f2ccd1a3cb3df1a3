// Package i18n translates error and violation codes for API responses.
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when the request does not ask for a supported language.
const DefaultLang = "es"

var catalogs = map[string]map[string]string{
	"es": {
		"required":                  "Obligatorio",
		"invalid_email":             "Email inválido",
		"must_be_positive":          "Debe ser mayor que cero",
		"must_not_be_negative":      "No puede ser negativo",
		"out_of_range":              "Fuera de rango",
		"invalid_range":             "Rango inválido",
		"before_start":              "Anterior a la fecha de inicio",
		"too_long":                  "Demasiado largo",
		"invalid_json":              "Cuerpo JSON inválido",
		"unauthorized":              "No autenticado",
		"forbidden":                 "Acceso denegado",
		"invalid_credentials":       "Email o contraseña incorrectos",
		"not_found":                 "No encontrado",
		"validation_failed":         "Datos inválidos",
		"quote_not_editable":        "El presupuesto no se puede modificar en su estado actual",
		"transition_not_allowed":    "Cambio de estado no permitido",
		"elevated_role_required":    "El cambio de estado requiere permisos de supervisor",
		"duplicate_only":            "Para reutilizar este presupuesto, duplicalo",
		"client_contact_missing":    "El cliente no tiene un email de contacto",
		"assembly_service_missing":  "El presupuesto de picking necesita al menos un servicio de armado",
		"unknown_status":            "Estado desconocido",
		"status_changed":            "El estado cambió mientras tanto, recargá el presupuesto",
		"no_seller_available":       "No hay vendedores activos para asignar la solicitud",
		"reference_in_use":          "El registro está en uso y no se puede eliminar",
		"invalid_variant_selection": "El ítem no pertenece al grupo de variantes",
		"invalid_token":             "Enlace inválido",
		"db_error":                  "Error interno",
		"quote_not_found":           "Presupuesto no encontrado",
		"item_not_found":            "Ítem no encontrado",

		"invalid_id":                   "Identificador inválido",
		"name_already_exists":          "Ya existe un perfil con ese nombre",
		"cannot_delete_system_profile": "Los perfiles del sistema no se pueden eliminar",
		"cannot_rename_system_profile": "Los perfiles del sistema no se pueden renombrar",
		"profile_has_users":            "El perfil tiene usuarios asignados",
	},
	"en": {
		"required":                  "Required",
		"invalid_email":             "Invalid email",
		"must_be_positive":          "Must be greater than zero",
		"must_not_be_negative":      "Must not be negative",
		"out_of_range":              "Out of range",
		"invalid_range":             "Invalid range",
		"before_start":              "Before the start date",
		"too_long":                  "Too long",
		"invalid_json":              "Invalid JSON body",
		"unauthorized":              "Not authenticated",
		"forbidden":                 "Forbidden",
		"invalid_credentials":       "Wrong email or password",
		"not_found":                 "Not found",
		"validation_failed":         "Invalid data",
		"quote_not_editable":        "The quote cannot be modified in its current status",
		"transition_not_allowed":    "Status change not allowed",
		"elevated_role_required":    "This status change requires a supervisor",
		"duplicate_only":            "Duplicate this quote to reuse it",
		"client_contact_missing":    "The client has no contact email",
		"assembly_service_missing":  "A picking quote needs at least one assembly service",
		"unknown_status":            "Unknown status",
		"status_changed":            "The status changed meanwhile, reload the quote",
		"no_seller_available":       "No active seller to assign the request to",
		"reference_in_use":          "The record is in use and cannot be deleted",
		"invalid_variant_selection": "The item does not belong to the variant group",
		"invalid_token":             "Invalid link",
		"db_error":                  "Internal error",
		"quote_not_found":           "Quote not found",
		"item_not_found":            "Item not found",

		"invalid_id":                   "Invalid identifier",
		"name_already_exists":          "A profile with that name already exists",
		"cannot_delete_system_profile": "System profiles cannot be deleted",
		"cannot_rename_system_profile": "System profiles cannot be renamed",
		"profile_has_users":            "The profile has users assigned",
	},
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		base = strings.ToLower(base)
		if _, ok := catalogs[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// T translates code, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if msg, ok := catalogs[lang][code]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// TranslateAll translates every value of a field->code map.
func TranslateAll(lang string, codes map[string]string) map[string]string {
	out := make(map[string]string, len(codes))
	for field, code := range codes {
		out[field] = T(lang, code)
	}
	return out
}

type ctxKey struct{}

// WithLang stores the request language.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
