package handlers

import (
	"strings"
	"time"

	"github.com/carddemo/terminal/internal/core/command"
	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/screen"
	"github.com/carddemo/terminal/internal/core/screens"
)

// View is the JSON document the terminal page renders for one screen.
type View struct {
	Screen        string          `json:"screen"`
	Path          string          `json:"path"`
	TransactionID string          `json:"transactionId"`
	ProgramName   string          `json:"programName"`
	Title         string          `json:"title"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	User          *ViewUser       `json:"user,omitempty"`
	Step          screen.Step     `json:"step"`
	Fields        []ViewField     `json:"fields"`
	Data          any             `json:"data,omitempty"`
	Result        any             `json:"result,omitempty"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
	Keys          []KeyHint       `json:"keys"`
	LastKey       *command.Result `json:"lastKey,omitempty"`
	Accepted      *bool           `json:"accepted,omitempty"`
}

// ViewUser is the signed-on identity shown in the screen header.
type ViewUser struct {
	UserID   string      `json:"userId"`
	FullName string      `json:"fullName"`
	Role     domain.Role `json:"role"`
}

// ViewField is one input of the form. Secret values are masked.
type ViewField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Error    string `json:"error,omitempty"`
	Secret   bool   `json:"secret,omitempty"`
	Editable bool   `json:"editable"`
}

// KeyHint is a function key the screen responds to.
type KeyHint struct {
	Key     command.Key `json:"key"`
	Label   string      `json:"label"`
	Enabled bool        `json:"enabled"`
}

var hintOrder = []command.Key{command.KeyEnter, command.KeyF3, command.KeyF4, command.KeyF5, command.KeyF12}

func buildView(def *screens.Definition, st screen.Context, s *domain.Session, b command.Bindings, now time.Time) View {
	v := View{
		Screen:        def.Name,
		Path:          def.Path,
		TransactionID: def.TransactionID,
		ProgramName:   def.ProgramName,
		Title:         def.Title,
		Date:          now.Format("01/02/06"),
		Time:          now.Format("15:04:05"),
		Step:          st.Step,
		Loading:       st.Loading,
		Error:         st.Error,
	}
	if s != nil {
		v.User = &ViewUser{UserID: s.UserID, FullName: s.FullName, Role: s.Role}
	}
	// The sign-on lookup holds tokens; they never leave the server.
	if def.Kind != screens.KindLogin {
		v.Data = st.Data
		v.Result = st.Result
	}

	idle := !st.Loading
	for _, fd := range def.Flow.Fields {
		value := st.Fields[fd.Name]
		if fd.Secret {
			value = strings.Repeat("*", len(value))
		}
		v.Fields = append(v.Fields, ViewField{
			Name:     fd.Name,
			Label:    fd.Label,
			Value:    value,
			Error:    st.FieldErrors[fd.Name],
			Secret:   fd.Secret,
			Editable: idle && fieldEditable(def, fd, st.Step),
		})
	}

	for _, k := range hintOrder {
		action, _ := command.ActionFor(k)
		binding, ok := b[action]
		if !ok {
			continue
		}
		v.Keys = append(v.Keys, KeyHint{
			Key:     k,
			Label:   keyLabel(def, action),
			Enabled: binding.Enabled == nil || binding.Enabled(),
		})
	}
	return v
}

// fieldEditable mirrors what screen.Controller.SetField accepts in step.
func fieldEditable(def *screens.Definition, fd screen.Field, step screen.Step) bool {
	switch step {
	case screen.StepInput:
		return !fd.Edit
	case screen.StepConfirm:
		return fd.Edit || def.ReadOnly()
	}
	return false
}

func keyLabel(def *screens.Definition, action command.Action) string {
	switch action {
	case command.ActionSubmit:
		if def.Kind == screens.KindLogin {
			return "Sign-on"
		}
		return "Continue"
	case command.ActionBack:
		if def.Kind == screens.KindLogin {
			return "Reset"
		}
		if def.Parent == "" {
			return "Exit"
		}
		return "Back"
	case command.ActionClear:
		return "Clear"
	case command.ActionSecondary:
		if def.Name == "user-delete" {
			return "Delete"
		}
		return "Save"
	case command.ActionExit:
		if def.Kind == screens.KindMenu {
			return "Sign-off"
		}
		return "Cancel"
	}
	return string(action)
}
