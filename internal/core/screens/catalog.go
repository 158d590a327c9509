// Package screens is the catalog of CardDemo terminal screens: for each one
// its route, legacy identifiers, access rule, key bindings and flow.
package screens

import (
	"sort"

	"github.com/carddemo/terminal/internal/core/command"
	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/guard"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/screen"
)

// Kind selects how the terminal handles ENTER on a screen.
type Kind int

const (
	KindForm Kind = iota
	KindLogin
	KindMenu
)

// Definition is one screen of the catalog.
type Definition struct {
	Name          string
	Path          string
	Routes        []string
	TransactionID string
	ProgramName   string
	Title         string
	Access        guard.Access
	Kind          Kind
	MenuType      string
	// Parent is where F3/ESC go. Screens without one log out instead.
	Parent string
	// ConfirmAction is the action that commits: ENTER (submit) or F5
	// (secondary). Empty on read-only screens.
	ConfirmAction command.Action
	// AutoLookup runs the lookup as soon as the screen is opened.
	AutoLookup bool
	// Param names a route parameter seeded into the field of the same name.
	Param string
	Flow  *screen.Flow
}

// ReadOnly reports whether the screen has nothing to commit.
func (d *Definition) ReadOnly() bool {
	return d.Flow.Commit == nil
}

// Catalog indexes definitions by path.
type Catalog struct {
	defs   []*Definition
	byPath map[string]*Definition
}

// NewCatalog builds every screen against gw.
func NewCatalog(gw ports.Gateway) *Catalog {
	defs := []*Definition{
		{
			Name: "signon", Path: domain.PathLogin, TransactionID: "CC00", ProgramName: "COSGN00C",
			Title: "Sign-on", Access: guard.None, Kind: KindLogin, Flow: signOnFlow(gw),
		},
		{
			Name: "main-menu", Path: domain.PathMainMenu, TransactionID: "CM00", ProgramName: "COMEN01C",
			Title: "Main Menu", Access: guard.Authenticated, Kind: KindMenu, MenuType: domain.MenuMain,
			AutoLookup: true, Flow: menuFlow(gw, domain.MenuMain),
		},
		{
			Name: "admin-menu", Path: domain.PathAdminMenu, TransactionID: "CA00", ProgramName: "COADM01C",
			Title: "Admin Menu", Access: guard.AdminOnly, Kind: KindMenu, MenuType: domain.MenuAdmin,
			AutoLookup: true, Flow: menuFlow(gw, domain.MenuAdmin),
		},
		{
			Name: "account-view", Path: "/accounts/view", TransactionID: "CAVW", ProgramName: "COACTVWC",
			Title: "View Account", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			Flow: accountViewFlow(gw),
		},
		{
			Name: "account-update", Path: "/accounts/update", TransactionID: "CAUP", ProgramName: "COACTUPC",
			Title: "Update Account", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			ConfirmAction: command.ActionSecondary, Flow: accountUpdateFlow(gw),
		},
		{
			Name: "card-list", Path: "/cards/list", TransactionID: "CCLI", ProgramName: "COCRDLIC",
			Title: "List Credit Cards", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			AutoLookup: true, Flow: cardListFlow(gw),
		},
		{
			Name: "card-add", Path: "/cards/add", TransactionID: "CCAD", ProgramName: "COCRDADC",
			Title: "Add Credit Card", Access: guard.Authenticated, Parent: "/cards/list",
			ConfirmAction: command.ActionSubmit, Flow: cardAddFlow(gw),
		},
		{
			Name: "card-view", Path: "/cards/view", TransactionID: "CCDL", ProgramName: "COCRDSLC",
			Title: "View Credit Card", Access: guard.Authenticated, Parent: "/cards/list",
			Flow: cardViewFlow(gw),
		},
		{
			Name: "card-update", Path: "/cards/update", TransactionID: "CCUP", ProgramName: "COCRDUPC",
			Title: "Update Credit Card", Access: guard.Authenticated, Parent: "/cards/list",
			ConfirmAction: command.ActionSecondary, Flow: cardUpdateFlow(gw),
		},
		{
			Name: "transaction-list", Path: "/transactions", TransactionID: "CT00", ProgramName: "COTRN00C",
			Title: "List Transactions", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			AutoLookup: true, Flow: transactionListFlow(gw),
		},
		{
			Name: "transaction-add", Path: "/transactions/add", TransactionID: "CT02", ProgramName: "COTRN02C",
			Title: "Add Transaction", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			ConfirmAction: command.ActionSubmit, Flow: transactionAddFlow(gw),
		},
		{
			Name: "transaction-view", Path: "/transactions/view", TransactionID: "CT01", ProgramName: "COTRN01C",
			Title: "View Transaction", Access: guard.Authenticated, Parent: "/transactions",
			Routes: []string{"/transactions/view", "/transactions/view/:transactionId"}, Param: "transactionId",
			Flow: transactionViewFlow(gw),
		},
		{
			Name: "reports", Path: "/reports", TransactionID: "CR00", ProgramName: "CORPT00C",
			Title: "Transaction Reports", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			ConfirmAction: command.ActionSubmit, Flow: reportFlow(gw),
		},
		{
			Name: "bill-payment", Path: "/billing/pay", TransactionID: "CB00", ProgramName: "COBIL00C",
			Title: "Bill Payment", Access: guard.Authenticated, Parent: domain.PathMainMenu,
			ConfirmAction: command.ActionSubmit, Flow: billPaymentFlow(gw),
		},
		{
			Name: "user-list", Path: "/admin/users", TransactionID: "CU00", ProgramName: "COUSR00C",
			Title: "List Users", Access: guard.AdminOnly, Parent: domain.PathAdminMenu,
			AutoLookup: true, Flow: userListFlow(gw),
		},
		{
			Name: "user-add", Path: "/admin/users/add", TransactionID: "CU01", ProgramName: "COUSR01C",
			Title: "Add User", Access: guard.AdminOnly, Parent: domain.PathAdminMenu,
			ConfirmAction: command.ActionSubmit, Flow: userAddFlow(gw),
		},
		{
			Name: "user-update", Path: "/admin/users/update", TransactionID: "CU02", ProgramName: "COUSR02C",
			Title: "Update User", Access: guard.AdminOnly, Parent: domain.PathAdminMenu,
			ConfirmAction: command.ActionSecondary, Flow: userUpdateFlow(gw),
		},
		{
			Name: "user-delete", Path: "/admin/users/delete", TransactionID: "CU03", ProgramName: "COUSR03C",
			Title: "Delete User", Access: guard.AdminOnly, Parent: domain.PathAdminMenu,
			ConfirmAction: command.ActionSecondary, Flow: userDeleteFlow(gw),
		},
	}

	c := &Catalog{defs: defs, byPath: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if len(d.Routes) == 0 {
			d.Routes = []string{d.Path}
		}
		c.byPath[d.Path] = d
	}
	return c
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []*Definition {
	return c.defs
}

// ByPath finds the screen registered at path.
func (c *Catalog) ByPath(path string) (*Definition, bool) {
	d, ok := c.byPath[path]
	return d, ok
}

// Paths lists every canonical path, sorted.
func (c *Catalog) Paths() []string {
	out := make([]string, 0, len(c.byPath))
	for p := range c.byPath {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
