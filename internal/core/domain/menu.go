package domain

// Menu types accepted by the menu endpoints.
const (
	MenuMain  = "main"
	MenuAdmin = "admin"
)

// MenuOption is one numbered entry of a menu. Options are 1-based in display
// order; Path is the route it navigates to and Action an alternative verb
// (e.g. "logout") for options that do not navigate.
type MenuOption struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Path        string `json:"path,omitempty"`
	Action      string `json:"action,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	AdminOnly   bool   `json:"adminOnly,omitempty"`
}

// Menu is the static descriptor of a menu screen.
type Menu struct {
	TransactionID string       `json:"transactionId"`
	ProgramName   string       `json:"programName"`
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle"`
	Options       []MenuOption `json:"options"`
}

// Select resolves a 1-based option number. It reports false when n is out of
// range or the option is disabled; callers must treat that as a no-op.
func (m *Menu) Select(n int) (MenuOption, bool) {
	if n < 1 || n > len(m.Options) {
		return MenuOption{}, false
	}
	opt := m.Options[n-1]
	if opt.Disabled {
		return MenuOption{}, false
	}
	return opt, true
}

// Option finds an option by id regardless of its enabled state.
func (m *Menu) Option(id int) (MenuOption, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o, true
		}
	}
	return MenuOption{}, false
}

// VisibleTo returns a copy of the menu without admin-only options when the
// role is not admin. Option numbering is recomputed from the remaining order.
func (m *Menu) VisibleTo(role Role) *Menu {
	out := *m
	out.Options = make([]MenuOption, 0, len(m.Options))
	for _, o := range m.Options {
		if o.AdminOnly && role != RoleAdmin {
			continue
		}
		o.ID = len(out.Options) + 1
		out.Options = append(out.Options, o)
	}
	return &out
}

// MainMenu returns the back-office main menu (COMEN01C).
func MainMenu() *Menu {
	return &Menu{
		TransactionID: "CM00",
		ProgramName:   "COMEN01C",
		Title:         "Main Menu",
		Subtitle:      "CardDemo - Credit Card Demo Application",
		Options: []MenuOption{
			{ID: 1, Label: "Account View", Description: "View account details", Path: "/accounts/view"},
			{ID: 2, Label: "Account Update", Description: "Update account details", Path: "/accounts/update"},
			{ID: 3, Label: "Credit Card List", Description: "List credit cards", Path: "/cards/list"},
			{ID: 4, Label: "Credit Card View", Description: "View credit card details", Path: "/cards/view"},
			{ID: 5, Label: "Credit Card Update", Description: "Update credit card details", Path: "/cards/update"},
			{ID: 6, Label: "Transaction List", Description: "List transactions", Path: "/transactions"},
			{ID: 7, Label: "Transaction View", Description: "View a transaction", Path: "/transactions/view"},
			{ID: 8, Label: "Transaction Add", Description: "Add a transaction", Path: "/transactions/add"},
			{ID: 9, Label: "Transaction Reports", Description: "Print transaction reports", Path: "/reports"},
			{ID: 10, Label: "Bill Payment", Description: "Pay account balance in full", Path: "/billing/pay"},
			{ID: 11, Label: "Pending Authorization View", Description: "Not installed", Disabled: true},
		},
	}
}

// AdminMenu returns the administrator menu (COADM01C).
func AdminMenu() *Menu {
	return &Menu{
		TransactionID: "CA00",
		ProgramName:   "COADM01C",
		Title:         "Admin Menu",
		Subtitle:      "CardDemo - Administration",
		Options: []MenuOption{
			{ID: 1, Label: "User List (Security)", Description: "List users", Path: "/admin/users", AdminOnly: true},
			{ID: 2, Label: "User Add (Security)", Description: "Add a user", Path: "/admin/users/add", AdminOnly: true},
			{ID: 3, Label: "User Update (Security)", Description: "Update a user", Path: "/admin/users/update", AdminOnly: true},
			{ID: 4, Label: "User Delete (Security)", Description: "Delete a user", Path: "/admin/users/delete", AdminOnly: true},
			{ID: 5, Label: "Transaction Type Maintenance", Description: "Not installed", Disabled: true, AdminOnly: true},
			{ID: 6, Label: "Back-office Main Menu", Description: "Switch to the main menu", Path: "/menu/main"},
		},
	}
}

// MenuByType returns the static descriptor for a menu type.
func MenuByType(menuType string) (*Menu, bool) {
	switch menuType {
	case MenuMain:
		return MainMenu(), true
	case MenuAdmin:
		return AdminMenu(), true
	}
	return nil, false
}
