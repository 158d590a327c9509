package service

import (
	"github.com/carddemo/terminal/internal/core/domain"
)

// MenuService serves the static menu descriptors.
type MenuService struct{}

func NewMenuService() *MenuService {
	return &MenuService{}
}

// Menu returns the descriptor for menuType as seen by role. The admin menu is
// refused to non-admin roles.
func (s *MenuService) Menu(menuType string, role domain.Role) (*domain.Menu, error) {
	menu, ok := domain.MenuByType(menuType)
	if !ok {
		return nil, domain.ErrUnknownMenu
	}
	if menuType == domain.MenuAdmin && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return menu.VisibleTo(role), nil
}

// ValidateOption checks that optionID may be chosen from menuType by role and
// returns the route it leads to. Unknown options are an error; disabled or
// admin-only options are reported as not validated.
func (s *MenuService) ValidateOption(menuType string, optionID int, role domain.Role) (bool, string, error) {
	menu, err := s.Menu(menuType, role)
	if err != nil {
		return false, "", err
	}
	opt, ok := menu.Option(optionID)
	if !ok {
		return false, "", domain.ErrUnknownMenuOption
	}
	if opt.Disabled || (opt.AdminOnly && role != domain.RoleAdmin) {
		return false, "", nil
	}
	return true, opt.Path, nil
}
