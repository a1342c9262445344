// Package console is the terminal admin console. Every table runs the listing controller
// against the admin API; add and edit screens run the form state.
package console

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilchouksey/mentor-hub-api/utils/form"
	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

type screen int

const (
	screenLogin screen = iota
	screenList
	screenView
	screenForm
	screenConfirm
	screenSend
)

type formInput struct {
	key   string
	label string
	input textinput.Model
}

// Model is the console state.
type Model struct {
	ctx    context.Context
	client *Client
	screen screen
	width  int
	height int

	username   textinput.Model
	password   textinput.Model
	loginFocus int
	loginErr   error

	resIdx     int
	ctrls      map[string]*listing.Controller
	rows       []listing.Row
	pagination response.PaginationMeta
	table      table.Model
	searching  bool
	search     textinput.Model
	searchSeq  int
	sortCol    int
	loading    bool

	form   *form.State
	inputs []formInput
	focus  int

	recipients textarea.Model

	keys keyMap
	help help.Model
}

// NewModel creates the console. When client already holds a token the login screen is skipped.
func NewModel(ctx context.Context, client *Client) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "

	recipients := textarea.New()
	recipients.Placeholder = "One recipient per line: Name <email@example.com>"

	m := &Model{
		ctx:        ctx,
		client:     client,
		screen:     screenLogin,
		username:   username,
		password:   password,
		ctrls:      map[string]*listing.Controller{},
		table:      table.New(table.WithFocused(true), table.WithHeight(listing.DefaultPageSize+1)),
		search:     search,
		recipients: recipients,
		keys:       newKeyMap(),
		help:       help.New(),
	}
	if client.Token() != "" {
		m.screen = screenList
	}
	return m
}

func (m *Model) res() Resource { return Resources[m.resIdx] }

// ctrl returns the controller of the current table, created on first use.
func (m *Model) ctrl() *listing.Controller {
	res := m.res()
	c, ok := m.ctrls[res.Path]
	if !ok {
		c = listing.NewController(res.Title)
		m.ctrls[res.Path] = c
	}
	return c
}

func (m *Model) selected() (listing.Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil, false
	}
	return m.rows[i], true
}

func rowID(row listing.Row) string {
	id, _ := row["id"].(string)
	return id
}

// Init starts on the login screen or loads the first table.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenList {
		return m.load()
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.recipients.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenList:
			return m.updateList(msg)
		case screenView:
			return m.updateView(msg)
		case screenForm:
			return m.updateForm(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		case screenSend:
			return m.updateSend(msg)
		}

	case loginDoneMsg:
		if msg.err != nil {
			m.loginErr = msg.err
			return m, nil
		}
		m.loginErr = nil
		m.screen = screenList
		return m, m.load()

	case pageLoadedMsg:
		if msg.resource != m.res().Path {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.ctrl().Notify(listing.BannerError, msg.err.Error())
			return m, bannerTick()
		}
		m.rows = msg.result.Rows
		m.pagination = msg.result.Pagination
		m.ctrl().SetPage(m.pagination.CurrentPage, max(m.pagination.TotalPages, 1))
		m.refreshTable()
		return m, nil

	case debounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.load()

	case actionDoneMsg:
		c, ok := m.ctrls[msg.resource]
		if !ok {
			return m, nil
		}
		c.FinishAction(msg.id, msg.err, msg.message)
		m.refreshTable()
		return m, tea.Batch(m.load(), bannerTick())

	case savedMsg:
		if msg.err != nil {
			var apiErr *APIError
			if errors.As(msg.err, &apiErr) && len(apiErr.Fields) > 0 {
				m.form.SetErrors(apiErr.FieldErrors())
			}
			m.ctrl().Notify(listing.BannerError, msg.err.Error())
			return m, bannerTick()
		}
		delay := m.ctrl().Saved(msg.message)
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return backMsg{} })

	case sentMsg:
		if msg.err != nil {
			m.ctrl().Notify(listing.BannerError, msg.err.Error())
			return m, bannerTick()
		}
		delay := m.ctrl().Saved(msg.message)
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return backMsg{} })

	case backMsg:
		m.backToList()
		return m, tea.Batch(m.load(), bannerTick())

	case bannerTickMsg:
		return m, nil
	}
	return m, nil
}

func bannerTick() tea.Cmd {
	return tea.Tick(listing.BannerTTL, func(time.Time) tea.Msg { return bannerTickMsg{} })
}

func (m *Model) backToList() {
	m.ctrl().Back()
	m.screen = screenList
	m.form = nil
	m.inputs = nil
}

// load fetches the current page of the current table.
func (m *Model) load() tea.Cmd {
	res := m.res()
	q := m.ctrl().Query()
	client, ctx := m.client, m.ctx
	m.loading = true
	return func() tea.Msg {
		result, err := client.List(ctx, res.Path, q)
		return pageLoadedMsg{resource: res.Path, result: result, err: err}
	}
}

// debounced schedules a load after delay; only the latest schedule fires.
func (m *Model) debounced(delay time.Duration) tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	return tea.Tick(delay, func(time.Time) tea.Msg { return debounceMsg{seq: seq} })
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.password.Blur()
			return m, m.username.Focus()
		}
		m.username.Blur()
		return m, m.password.Focus()
	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.username.Blur()
			return m, m.password.Focus()
		}
		username, password := m.username.Value(), m.password.Value()
		client, ctx := m.client, m.ctx
		return m, func() tea.Msg {
			_, err := client.Login(ctx, username, password)
			return loginDoneMsg{err: err}
		}
	case "esc":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ctrl()
	res := m.res()

	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() == before {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.debounced(c.SetSearch(m.search.Value())))
	}

	row, hasRow := m.selected()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.filter):
		if res.FilterKey == "" {
			return m, nil
		}
		next := nextOption(res.FilterOptions, c.Filters[res.FilterKey])
		return m, m.debounced(c.SetFilter(res.FilterKey, next))

	case key.Matches(msg, m.keys.sortCol):
		m.sortCol = (m.sortCol + 1) % len(res.Columns)
		c.ToggleSort(res.Columns[m.sortCol].Key)
		m.refreshTable()
		return m, m.load()

	case key.Matches(msg, m.keys.sortDir):
		c.ToggleSort(res.Columns[m.sortCol].Key)
		m.refreshTable()
		return m, m.load()

	case key.Matches(msg, m.keys.prev):
		c.SetPage(c.Page-1, max(m.pagination.TotalPages, 1))
		return m, m.load()

	case key.Matches(msg, m.keys.next):
		c.SetPage(c.Page+1, max(m.pagination.TotalPages, 1))
		return m, m.load()

	case key.Matches(msg, m.keys.tab), key.Matches(msg, m.keys.backTab):
		step := 1
		if key.Matches(msg, m.keys.backTab) {
			step = len(Resources) - 1
		}
		m.resIdx = (m.resIdx + step) % len(Resources)
		m.rows, m.sortCol = nil, 0
		m.search.SetValue(m.ctrl().Search)
		m.refreshTable()
		return m, m.load()

	case key.Matches(msg, m.keys.reload):
		return m, m.load()

	case key.Matches(msg, m.keys.add):
		if res.ReadOnly {
			return m, nil
		}
		c.Add()
		return m, m.openForm(nil)

	case !hasRow:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.enter):
		c.View(row, RowLabel(res, row))
		m.screen = screenView
		return m, nil

	case key.Matches(msg, m.keys.edit):
		if res.ReadOnly {
			return m, nil
		}
		c.Edit(row, RowLabel(res, row))
		return m, m.openForm(row)

	case key.Matches(msg, m.keys.toggle):
		if res.ReadOnly {
			return m, nil
		}
		return m, m.rowAction("toggle", row, func(ctx context.Context, id string) (string, error) {
			return m.client.Toggle(ctx, res.Path, id)
		})

	case key.Matches(msg, m.keys.del):
		if res.ReadOnly {
			return m, nil
		}
		c.RequestConfirm("delete", rowID(row), RowLabel(res, row))
		m.screen = screenConfirm
		return m, nil

	case key.Matches(msg, m.keys.special):
		switch res.Path {
		case "quotes":
			return m, m.rowAction("feature", row, func(ctx context.Context, id string) (string, error) {
				return m.client.Feature(ctx, id)
			})
		case "bookings":
			status := nextBookingStatus(fmt.Sprint(row["status"]))
			return m, m.rowAction("status", row, func(ctx context.Context, id string) (string, error) {
				return m.client.SetBookingStatus(ctx, id, status)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.send):
		if !res.CanSend {
			return m, nil
		}
		c.Send(row, RowLabel(res, row))
		m.recipients.Reset()
		m.screen = screenSend
		return m, m.recipients.Focus()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// rowAction runs call for row unless the same action is already in flight for it.
func (m *Model) rowAction(action string, row listing.Row, call func(context.Context, string) (string, error)) tea.Cmd {
	id := rowID(row)
	actionID := listing.ActionID(action, id)
	if !m.ctrl().StartAction(actionID) {
		return nil
	}
	m.refreshTable()
	resource, ctx := m.res().Path, m.ctx
	return func() tea.Msg {
		message, err := call(ctx, id)
		return actionDoneMsg{resource: resource, id: actionID, message: message, err: err}
	}
}

func (m *Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ctrl()
	switch {
	case key.Matches(msg, m.keys.back):
		m.backToList()
		return m, nil
	case key.Matches(msg, m.keys.edit):
		if m.res().ReadOnly {
			return m, nil
		}
		row := c.Selected
		c.Edit(row, RowLabel(m.res(), row))
		return m, m.openForm(row)
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ctrl()
	switch {
	case key.Matches(msg, m.keys.yes):
		confirmed := c.ResolveConfirm(true)
		m.screen = screenList
		if confirmed == nil {
			return m, nil
		}
		res := m.res()
		return m, m.rowAction(confirmed.Action, listing.Row{"id": confirmed.ID}, func(ctx context.Context, id string) (string, error) {
			return m.client.Delete(ctx, res.Path, id)
		})
	case key.Matches(msg, m.keys.no):
		c.ResolveConfirm(false)
		m.screen = screenList
	}
	return m, nil
}

// openForm switches to the add (row == nil) or edit form.
func (m *Model) openForm(row listing.Row) tea.Cmd {
	res := m.res()
	m.form = NewForm(res, row != nil)
	if row != nil {
		m.form.Load(FormValues(res, row))
	} else {
		for _, sec := range res.Sections {
			m.form.AddRow(sec.Name)
		}
	}
	m.focus = 0
	m.screen = screenForm
	m.buildInputs()
	return m.focusInput()
}

// buildInputs lays out one input per field and per section row field.
func (m *Model) buildInputs() {
	res := m.res()
	var inputs []formInput
	add := func(key, label string, secret bool) {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(m.form.Values[key])
		if secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs = append(inputs, formInput{key: key, label: label, input: in})
	}
	for _, f := range res.Fields {
		add(f.Key, f.Label, f.Kind == Secret)
	}
	for _, sec := range res.Sections {
		for i := 0; i < m.form.Rows(sec.Name); i++ {
			for _, f := range sec.Fields {
				add(form.RowKey(sec.Name, i, f.Key), fmt.Sprintf("%s %d %s", sec.Label, i+1, strings.ToLower(f.Label)), false)
			}
		}
	}
	m.inputs = inputs
	if m.focus >= len(m.inputs) {
		m.focus = len(m.inputs) - 1
	}
}

func (m *Model) focusInput() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].input.Blur()
	}
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return nil
	}
	return m.inputs[m.focus].input.Focus()
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ctrl()
	res := m.res()

	switch {
	case key.Matches(msg, m.keys.back):
		m.backToList()
		return m, nil

	case msg.String() == "tab", msg.String() == "down", msg.String() == "shift+tab", msg.String() == "up":
		if len(m.inputs) == 0 {
			return m, nil
		}
		m.form.Blur(m.inputs[m.focus].key)
		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = len(m.inputs) - 1
		}
		m.focus = (m.focus + step) % len(m.inputs)
		return m, m.focusInput()

	case key.Matches(msg, m.keys.addRow):
		if len(res.Sections) == 0 {
			return m, nil
		}
		m.form.AddRow(res.Sections[0].Name)
		m.buildInputs()
		return m, m.focusInput()

	case key.Matches(msg, m.keys.delRow):
		if len(m.inputs) == 0 {
			return m, nil
		}
		section, i, ok := splitInputKey(m.inputs[m.focus].key)
		if !ok {
			return m, nil
		}
		m.form.RemoveRow(section, i)
		m.buildInputs()
		return m, m.focusInput()

	case key.Matches(msg, m.keys.save):
		if !m.form.Submit() {
			c.Notify(listing.BannerError, "Please fix the highlighted fields")
			return m, bannerTick()
		}
		body := Payload(res, m.form)
		id := m.form.Values["id"]
		if !m.form.IsUpdate() {
			id = ""
		}
		client, ctx := m.client, m.ctx
		return m, func() tea.Msg {
			message, err := client.Save(ctx, res.Path, id, body)
			return savedMsg{message: message, err: err}
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	in := &m.inputs[m.focus]
	before := in.input.Value()
	var cmd tea.Cmd
	in.input, cmd = in.input.Update(msg)
	if after := in.input.Value(); after != before {
		m.form.Set(in.key, after)
	}
	return m, cmd
}

// splitInputKey parses "programs.1.title".
func splitInputKey(k string) (string, int, bool) {
	parts := strings.Split(k, ".")
	if len(parts) != 3 {
		return "", 0, false
	}
	var i int
	if _, err := fmt.Sscanf(parts[1], "%d", &i); err != nil {
		return "", 0, false
	}
	return parts[0], i, true
}

func (m *Model) updateSend(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.backToList()
		return m, nil
	case key.Matches(msg, m.keys.save):
		recipients, err := ParseRecipients(m.recipients.Value())
		if err != nil {
			m.ctrl().Notify(listing.BannerError, err.Error())
			return m, bannerTick()
		}
		id := rowID(m.ctrl().Selected)
		client, ctx := m.client, m.ctx
		return m, func() tea.Msg {
			message, err := client.Send(ctx, id, recipients)
			return sentMsg{message: message, err: err}
		}
	}
	var cmd tea.Cmd
	m.recipients, cmd = m.recipients.Update(msg)
	return m, cmd
}

// ParseRecipients reads "Name <email>" or bare "email" lines. Blank lines are skipped.
func ParseRecipients(text string) ([]map[string]string, error) {
	var out []map[string]string
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		addr, err := mail.ParseAddress(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid recipient %q", n+1, line)
		}
		out = append(out, map[string]string{"name": addr.Name, "email": addr.Address})
	}
	if len(out) == 0 {
		return nil, errors.New("add at least one recipient")
	}
	return out, nil
}

func nextOption(options []string, current string) string {
	if current == "" {
		current = "all"
	}
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

var bookingFlow = []string{"pending", "confirmed", "completed", "cancelled"}

func nextBookingStatus(current string) string {
	for i, s := range bookingFlow {
		if s == current {
			return bookingFlow[(i+1)%len(bookingFlow)]
		}
	}
	return bookingFlow[0]
}

// refreshTable rebuilds columns (with the sort marker) and rows (with loading markers).
func (m *Model) refreshTable() {
	res := m.res()
	c := m.ctrl()

	cols := make([]table.Column, len(res.Columns))
	for i, col := range res.Columns {
		title := col.Label
		if c.Sort.Column == col.Key {
			if c.Sort.Direction == listing.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: col.Width}
	}

	rows := make([]table.Row, len(m.rows))
	for i, row := range m.rows {
		cells := make(table.Row, len(res.Columns))
		for j, col := range res.Columns {
			cells[j] = formatValue(row[col.Key])
		}
		id := rowID(row)
		for _, action := range []string{"toggle", "delete", "feature", "status"} {
			if c.IsLoading(listing.ActionID(action, id)) {
				cells[0] = "… " + cells[0]
				break
			}
		}
		rows[i] = cells
	}

	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
}
