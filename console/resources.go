package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilchouksey/mentor-hub-api/utils/form"
	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
)

// FieldKind controls how a form value is converted to JSON.
type FieldKind int

const (
	Text FieldKind = iota
	Number
	Bool
	// List is a comma separated []string.
	List
	// Secret is write-only; left blank on update it is not sent.
	Secret
)

// Field is one form input.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
}

// Section is a repeated group of fields ("programs").
type Section struct {
	Name   string
	Label  string
	Fields []Field
}

// Column is one table column.
type Column struct {
	Key   string
	Label string
	Width int
}

// Resource describes one admin table.
type Resource struct {
	Path     string
	Title    string
	LabelKey string
	Columns  []Column
	Fields   []Field
	Sections []Section
	// FilterKey is cycled by the filter key; "status" maps to is_active on the server.
	FilterKey     string
	FilterOptions []string
	CanSend       bool
	ReadOnly      bool
}

var activity = []string{"all", "active", "inactive"}

// Resources lists the tables in tab order.
var Resources = []Resource{
	{
		Path: "internships", Title: "Internships", LabelKey: "mentor_name",
		Columns: []Column{
			{"mentor_name", "Mentor", 22}, {"profession", "Profession", 18}, {"city", "City", 14},
			{"sort_order", "Order", 6}, {"is_active", "Active", 7}, {"created_at", "Created", 20},
		},
		Fields: []Field{
			{Key: "mentor_name", Label: "Mentor name", Required: true},
			{Key: "profession", Label: "Profession", Required: true},
			{Key: "specialization", Label: "Specialization"},
			{Key: "city", Label: "City", Required: true},
			{Key: "city_note", Label: "City note"},
			{Key: "is_multiple_city", Label: "Multiple cities", Kind: Bool},
			{Key: "includes", Label: "Includes (comma separated)", Kind: List},
			{Key: "additional_info", Label: "Additional info"},
			{Key: "sort_order", Label: "Sort order", Kind: Number},
		},
		Sections: []Section{{
			Name: "programs", Label: "Program",
			Fields: []Field{
				{Key: "title", Label: "Title", Required: true},
				{Key: "duration", Label: "Duration", Required: true},
				{Key: "fees", Label: "Fees", Kind: Number, Required: true},
				{Key: "mode", Label: "Mode (online/offline/hybrid)"},
			},
		}},
		FilterKey: "status", FilterOptions: activity,
	},
	{
		Path: "bookings", Title: "Bookings", LabelKey: "name",
		Columns: []Column{
			{"name", "Name", 18}, {"email", "Email", 24}, {"mentor_name", "Mentor", 18},
			{"status", "Status", 10}, {"created_at", "Created", 20},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "email", Label: "Email", Required: true},
			{Key: "phone", Label: "Phone"},
			{Key: "internship_id", Label: "Internship id"},
			{Key: "preferred_date", Label: "Preferred date"},
			{Key: "message", Label: "Message"},
			{Key: "status", Label: "Status (pending/confirmed/completed/cancelled)"},
		},
		FilterKey: "status", FilterOptions: []string{"all", "pending", "confirmed", "completed", "cancelled"},
	},
	{
		Path: "users", Title: "Users", LabelKey: "username",
		Columns: []Column{
			{"username", "Username", 18}, {"email", "Email", 24}, {"role", "Role", 8},
			{"is_active", "Active", 7}, {"last_login", "Last login", 20},
		},
		Fields: []Field{
			{Key: "username", Label: "Username", Required: true},
			{Key: "email", Label: "Email"},
			{Key: "role", Label: "Role (admin/user)"},
			{Key: "password", Label: "Password", Kind: Secret, Required: true},
		},
		FilterKey: "role", FilterOptions: []string{"all", "admin", "user"},
	},
	{
		Path: "quotes", Title: "Quotes", LabelKey: "author",
		Columns: []Column{
			{"text", "Text", 40}, {"author", "Author", 18}, {"is_featured", "Featured", 9}, {"is_active", "Active", 7},
		},
		Fields: []Field{
			{Key: "text", Label: "Text", Required: true},
			{Key: "author", Label: "Author", Required: true},
			{Key: "category", Label: "Category"},
		},
		FilterKey: "status", FilterOptions: activity,
	},
	{
		Path: "achievements", Title: "Achievements", LabelKey: "title",
		Columns: []Column{
			{"title", "Title", 28}, {"metric", "Metric", 10}, {"category", "Category", 14},
			{"sort_order", "Order", 6}, {"is_active", "Active", 7},
		},
		Fields: []Field{
			{Key: "title", Label: "Title", Required: true},
			{Key: "description", Label: "Description"},
			{Key: "metric", Label: "Metric"},
			{Key: "icon", Label: "Icon"},
			{Key: "category", Label: "Category"},
			{Key: "sort_order", Label: "Sort order", Kind: Number},
		},
		FilterKey: "status", FilterOptions: activity,
	},
	{
		Path: "audio", Title: "Audio", LabelKey: "title",
		Columns: []Column{
			{"title", "Title", 28}, {"speaker", "Speaker", 18}, {"duration_seconds", "Seconds", 8}, {"is_active", "Active", 7},
		},
		Fields: []Field{
			{Key: "title", Label: "Title", Required: true},
			{Key: "speaker", Label: "Speaker"},
			{Key: "audio_url", Label: "Audio URL", Required: true},
			{Key: "duration_seconds", Label: "Duration (seconds)", Kind: Number},
			{Key: "category", Label: "Category"},
			{Key: "description", Label: "Description"},
		},
		FilterKey: "status", FilterOptions: activity,
	},
	{
		Path: "notification-templates", Title: "Notifications", LabelKey: "name",
		Columns: []Column{
			{"name", "Name", 24}, {"channel", "Channel", 8}, {"subject", "Subject", 30}, {"is_active", "Active", 7},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "channel", Label: "Channel (email/sms/push)"},
			{Key: "subject", Label: "Subject"},
			{Key: "body", Label: "Body ({{name}}, {{email}})", Required: true},
		},
		FilterKey: "channel", FilterOptions: []string{"all", "email", "sms", "push"},
		CanSend: true,
	},
	{
		Path: "notification-logs", Title: "Send log", LabelKey: "subject",
		Columns: []Column{
			{"subject", "Subject", 30}, {"channel", "Channel", 8}, {"sent_count", "Sent", 6},
			{"failed_count", "Failed", 7}, {"created_at", "Sent at", 20},
		},
		ReadOnly: true,
	},
}

// NewForm builds the form state for res. Secret fields are only required on create.
func NewForm(res Resource, update bool) *form.State {
	f := form.New()
	for _, field := range res.Fields {
		if field.Required && !(field.Kind == Secret && update) {
			f.Require(field.Key, field.Label)
		}
		if check := checkFor(field); check != nil {
			f.Rule(field.Key, check)
		}
	}
	for _, sec := range res.Sections {
		keys := make([]string, len(sec.Fields))
		for i, field := range sec.Fields {
			keys[i] = field.Key
			pattern := sec.Name + ".*." + field.Key
			if field.Required {
				f.Require(pattern, sec.Label+" "+strings.ToLower(field.Label))
			}
			if check := checkFor(field); check != nil {
				f.Rule(pattern, check)
			}
		}
		f.Section(sec.Name, keys...)
	}
	return f
}

func checkFor(field Field) form.Check {
	switch field.Kind {
	case Number:
		return func(value string, _ map[string]string) string {
			if strings.TrimSpace(value) == "" {
				return ""
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return field.Label + " must be a number"
			}
			if n < 0 {
				return field.Label + " must be 0 or more"
			}
			return ""
		}
	case Bool:
		return func(value string, _ map[string]string) string {
			if _, ok := parseBool(value); !ok {
				return field.Label + " must be yes or no"
			}
			return ""
		}
	}
	return nil
}

// FormValues flattens row into form keys, including "section.i.field" keys.
func FormValues(res Resource, row listing.Row) map[string]string {
	values := map[string]string{}
	if id, ok := row["id"].(string); ok {
		values["id"] = id
	}
	for _, field := range res.Fields {
		if field.Kind == Secret {
			continue
		}
		values[field.Key] = formatValue(row[field.Key])
	}
	for _, sec := range res.Sections {
		items, _ := row[sec.Name].([]any)
		for i, item := range items {
			obj, _ := item.(map[string]any)
			for _, field := range sec.Fields {
				values[form.RowKey(sec.Name, i, field.Key)] = formatValue(obj[field.Key])
			}
		}
	}
	return values
}

// Payload converts form values into the JSON body for create or update.
func Payload(res Resource, f *form.State) map[string]any {
	body := map[string]any{}
	for _, field := range res.Fields {
		raw := strings.TrimSpace(f.Values[field.Key])
		if field.Kind == Secret && raw == "" {
			continue
		}
		body[field.Key] = convert(field.Kind, raw)
	}
	for _, sec := range res.Sections {
		items := make([]map[string]any, 0, f.Rows(sec.Name))
		for i := 0; i < f.Rows(sec.Name); i++ {
			item := map[string]any{}
			for _, field := range sec.Fields {
				item[field.Key] = convert(field.Kind, strings.TrimSpace(f.Values[form.RowKey(sec.Name, i, field.Key)]))
			}
			items = append(items, item)
		}
		body[sec.Name] = items
	}
	return body
}

func convert(kind FieldKind, raw string) any {
	switch kind {
	case Number:
		if raw == "" {
			return 0
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
		return raw
	case Bool:
		b, _ := parseBool(raw)
		return b
	case List:
		out := []string{}
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	default:
		return raw
	}
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "no", "n", "0":
		return false, true
	case "true", "yes", "y", "1":
		return true, true
	default:
		return false, false
	}
}

// formatValue renders a JSON value for a cell or an input.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return fmt.Sprintf("{%d fields}", len(t))
	default:
		return fmt.Sprint(t)
	}
}

// RowLabel is the record name used in breadcrumbs and confirmations.
func RowLabel(res Resource, row listing.Row) string {
	if label := formatValue(row[res.LabelKey]); label != "" {
		return label
	}
	id, _ := row["id"].(string)
	return id
}
