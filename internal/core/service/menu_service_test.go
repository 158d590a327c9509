package service

import (
	"errors"
	"testing"

	"github.com/carddemo/terminal/internal/core/domain"
)

func TestMenuService_Menu(t *testing.T) {
	svc := NewMenuService()

	main, err := svc.Menu(domain.MenuMain, domain.RoleBackOffice)
	if err != nil {
		t.Fatalf("main menu: %v", err)
	}
	if main.TransactionID != "CM00" || main.ProgramName != "COMEN01C" {
		t.Fatalf("unexpected main menu header: %+v", main)
	}
	if len(main.Options) != 11 {
		t.Fatalf("expected 11 options, got %d", len(main.Options))
	}

	if _, err := svc.Menu(domain.MenuAdmin, domain.RoleBackOffice); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for back-office admin menu, got %v", err)
	}
	admin, err := svc.Menu(domain.MenuAdmin, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("admin menu: %v", err)
	}
	if admin.TransactionID != "CA00" {
		t.Fatalf("unexpected admin menu: %+v", admin)
	}

	if _, err := svc.Menu("reports", domain.RoleAdmin); !errors.Is(err, domain.ErrUnknownMenu) {
		t.Fatalf("expected ErrUnknownMenu, got %v", err)
	}
}

func TestMenuService_ValidateOption(t *testing.T) {
	svc := NewMenuService()

	ok, path, err := svc.ValidateOption(domain.MenuMain, 10, domain.RoleBackOffice)
	if err != nil || !ok || path != "/billing/pay" {
		t.Fatalf("expected bill payment route, got ok=%v path=%q err=%v", ok, path, err)
	}

	ok, _, err = svc.ValidateOption(domain.MenuMain, 11, domain.RoleBackOffice)
	if err != nil || ok {
		t.Fatalf("disabled option must not validate, got ok=%v err=%v", ok, err)
	}

	if _, _, err := svc.ValidateOption(domain.MenuMain, 12, domain.RoleBackOffice); !errors.Is(err, domain.ErrUnknownMenuOption) {
		t.Fatalf("expected ErrUnknownMenuOption, got %v", err)
	}

	ok, path, err = svc.ValidateOption(domain.MenuAdmin, 1, domain.RoleAdmin)
	if err != nil || !ok || path != "/admin/users" {
		t.Fatalf("expected user list route, got ok=%v path=%q err=%v", ok, path, err)
	}
}
