package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/custctl/internal/tasks"
)

const (
	createName = iota
	createEmail
	createPhone
	createAddress
	createNotes
)

// createModal renders [tasks.CreateFlow]'s form as text inputs.
type createModal struct {
	form
	active bool
	keys   formKeys
}

func newCreateModal() createModal {
	cm := createModal{
		form: form{fields: []field{
			newField("Name*", "Jane Doe", false),
			newField("Email*", "jane@example.com", false),
			newField("Phone*", "555-0100", false),
			newField("Address", "1 Main St, Springfield", false),
			newField("Notes", "", false),
		}},
		active: true,
		keys:   newFormKeys("toggle active"),
	}
	cm.focusAt(createName)
	return cm
}

// load copies a flow form into the inputs.
func (cm *createModal) load(f tasks.CreateForm) {
	cm.set(createName, f.Name)
	cm.set(createEmail, f.Email)
	cm.set(createPhone, f.Phone)
	cm.set(createAddress, f.Address)
	cm.set(createNotes, f.Notes)
	cm.active = f.Active
}

func (cm *createModal) values() tasks.CreateForm {
	return tasks.CreateForm{
		Name:    cm.fields[createName].input.Value(),
		Email:   cm.fields[createEmail].input.Value(),
		Phone:   cm.fields[createPhone].input.Value(),
		Address: cm.fields[createAddress].input.Value(),
		Notes:   cm.fields[createNotes].input.Value(),
		Active:  cm.active,
	}
}

func (m *Model) openCreate() (tea.Model, tea.Cmd) {
	m.create.Open()
	m.createModal.load(m.create.Form())
	m.view = CreateView
	return m, m.createModal.focusAt(createName)
}

func (m *Model) handleCreateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cm := &m.createModal
	switch {
	case key.Matches(msg, cm.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, cm.keys.back):
		m.create.SetForm(cm.values())
		m.create.Close()
		m.view = DashboardView
		return m, nil
	case key.Matches(msg, cm.keys.toggle):
		cm.active = !cm.active
		return m, nil
	case key.Matches(msg, cm.keys.next):
		return m, cm.next()
	case key.Matches(msg, cm.keys.prev):
		return m, cm.prev()
	case key.Matches(msg, cm.keys.submit):
		if m.busy() {
			return m, nil
		}
		m.create.SetForm(cm.values())
		return m, m.startBusy(m.submitCustomer())
	}

	return m, cm.update(msg)
}

func (m *Model) submitCustomer() tea.Cmd {
	return func() tea.Msg {
		created, err := m.create.Submit(m.ctx, nil)
		return customerCreatedMsg(created, err, m.refresher.take())
	}
}

func (m *Model) handleCustomerCreated(res createResult) (tea.Model, tea.Cmd) {
	m.stopBusy()
	if res.err != nil {
		// the flow keeps the modal open with the submitted values and its error message
		return m, nil
	}

	m.createModal.load(m.create.Form())
	m.view = DashboardView
	m.status = styles.ok.Render("Added " + res.customer.Name)

	if res.refreshed != nil {
		return m.applyFetch(*res.refreshed)
	}
	return m, nil
}

func (m *Model) renderCreate() string {
	cm := &m.createModal
	active := "[ ] Active"
	if cm.active {
		active = "[x] Active"
	}

	body := styles.title.Render("New customer") + "\n" + cm.view(nil) + "\n" + styles.label.Render("") + " " + active + "\n"
	if errMsg := m.create.Err(); errMsg != "" {
		body += "\n" + styles.err.Render(errMsg) + "\n"
	}
	if m.busy() {
		body += "\n" + m.spinner.View() + " Saving..."
	}

	k := cm.keys
	return styles.modal.Render(body) + "\n" + m.help.ShortHelpView([]key.Binding{k.next, k.submit, k.toggle, k.back})
}
