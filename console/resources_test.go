package console

import (
	"testing"

	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resource(t *testing.T, path string) Resource {
	t.Helper()
	for _, r := range Resources {
		if r.Path == path {
			return r
		}
	}
	t.Fatalf("no resource %q", path)
	return Resource{}
}

func TestFormValuesFlattenSections(t *testing.T) {
	res := resource(t, "internships")
	row := listing.Row{
		"id":          "int_1",
		"mentor_name": "Asha Rao",
		"city":        "Pune",
		"includes":    []any{"Certificate", "Site visits"},
		"is_active":   true,
		"sort_order":  float64(2),
		"programs": []any{
			map[string]any{"title": "Studio", "duration": "8 weeks", "fees": float64(4000), "mode": "offline"},
			map[string]any{"title": "Intro", "duration": "2 weeks", "fees": float64(0), "mode": "online"},
		},
	}

	values := FormValues(res, row)
	assert.Equal(t, "int_1", values["id"])
	assert.Equal(t, "Certificate, Site visits", values["includes"])
	assert.Equal(t, "2", values["sort_order"])
	assert.Equal(t, "4000", values["programs.0.fees"])
	assert.Equal(t, "Intro", values["programs.1.title"])
	assert.Equal(t, "", values["specialization"])
}

func TestPayloadConvertsKinds(t *testing.T) {
	res := resource(t, "internships")
	f := NewForm(res, false)
	f.Load(map[string]string{
		"mentor_name":      " Asha Rao ",
		"profession":       "Architect",
		"city":             "Pune",
		"is_multiple_city": "yes",
		"includes":         "Certificate, , Site visits",
		"sort_order":       "",
		"programs.0.title": "Studio",
		"programs.0.fees":  "4000",
	})

	body := Payload(res, f)
	assert.Equal(t, "Asha Rao", body["mentor_name"])
	assert.Equal(t, true, body["is_multiple_city"])
	assert.Equal(t, []string{"Certificate", "Site visits"}, body["includes"])
	assert.Equal(t, 0, body["sort_order"])

	programs, ok := body["programs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, programs, 1)
	assert.Equal(t, float64(4000), programs[0]["fees"])
	assert.Equal(t, "Studio", programs[0]["title"])
}

func TestFormChecksNumbersAndRequired(t *testing.T) {
	res := resource(t, "internships")
	f := NewForm(res, false)
	f.Set("mentor_name", "Asha")
	f.Set("profession", "Architect")
	f.Set("city", "Pune")
	f.Set("sort_order", "-1")
	f.AddRow("programs")
	f.Set("programs.0.fees", "lots")

	assert.False(t, f.Submit())
	assert.Equal(t, "Sort order must be 0 or more", f.Errors["sort_order"])
	assert.Equal(t, "Fees must be a number", f.Errors["programs.0.fees"])
	assert.Equal(t, "Program title is required", f.Errors["programs.0.title"])
}

func TestSecretFieldsOnUpdate(t *testing.T) {
	res := resource(t, "users")

	create := NewForm(res, false)
	create.Set("username", "editor")
	assert.False(t, create.Submit(), "a new user needs a password")

	update := NewForm(res, true)
	update.Load(FormValues(res, listing.Row{"id": "usr_1", "username": "editor", "role": "user"}))
	require.True(t, update.Submit())
	assert.NotContains(t, Payload(res, update), "password", "a blank password is not sent")

	update.Set("password", "new-secret")
	assert.Equal(t, "new-secret", Payload(res, update)["password"])
}

func TestRowLabel(t *testing.T) {
	res := resource(t, "quotes")
	assert.Equal(t, "Maya", RowLabel(res, listing.Row{"id": "quo_1", "author": "Maya"}))
	assert.Equal(t, "quo_1", RowLabel(res, listing.Row{"id": "quo_1"}))
}

func TestParseRecipients(t *testing.T) {
	got, err := ParseRecipients("Asha Rao <asha@example.com>\n\n  kabir@example.com  \n")
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"name": "Asha Rao", "email": "asha@example.com"},
		{"name": "", "email": "kabir@example.com"},
	}, got)

	_, err = ParseRecipients("asha@example.com\nnot an address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ParseRecipients("  \n")
	assert.Error(t, err)
}

func TestNextOption(t *testing.T) {
	assert.Equal(t, "active", nextOption(activity, ""))
	assert.Equal(t, "inactive", nextOption(activity, "active"))
	assert.Equal(t, "all", nextOption(activity, "inactive"))
	assert.Equal(t, "all", nextOption(activity, "bogus"))

	assert.Equal(t, "confirmed", nextBookingStatus("pending"))
	assert.Equal(t, "pending", nextBookingStatus("cancelled"))
	assert.Equal(t, "pending", nextBookingStatus(""))
}
