package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"text/template"
)

// ErrUnknownTemplate means the requested template name is not in the catalog.
var ErrUnknownTemplate = errors.New("notifications: unknown template")

// Template catalog for outbound SMS. Variables render with strict missing-key
// semantics so a partially populated confirmation fails instead of going out
// with holes in it.
var templateCatalog = map[string]string{
	"appointmentConfirmation": "Hi {{.customerName}}! Your {{.serviceType}} appointment with {{.businessName}} is confirmed for {{.date}} at {{.time}}. Questions? Call us at {{.businessPhone}}.",
	"appointmentReminder":     "Reminder from {{.businessName}}: your {{.serviceType}} appointment is tomorrow, {{.date}} at {{.time}}. Reply or call {{.businessPhone}} to reschedule.",
	"emergencyResponse":       "{{.businessName}} here. We received your emergency request and a technician is being dispatched. We will call you shortly at {{.customerPhone}}. For immediate help call {{.businessPhone}}.",
}

// TemplateNames lists the catalog in stable order for the templates endpoint.
func TemplateNames() []string {
	names := make([]string, 0, len(templateCatalog))
	for name := range templateCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderTemplate renders a catalog template with the given variables.
func RenderTemplate(name string, data map[string]any) (string, error) {
	text, ok := templateCatalog[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("notifications: parse template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notifications: render template %q: %w", name, err)
	}
	return buf.String(), nil
}
