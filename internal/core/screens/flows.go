package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/screen"
)

const dateLayout = "2006-01-02"

var (
	accountIDField = screen.Field{
		Name: "accountId", Label: "Account ID", Pattern: screen.AccountIDPattern,
		Rules: "required,len=11,numeric", Message: "Account number must be a non zero 11 digit number",
	}
	cardNumberField = screen.Field{
		Name: "cardNumber", Label: "Card Number", Pattern: screen.CardNumberPattern,
		Rules: "required,len=16,numeric", Message: "Card number must be a 16 digit number",
	}
	userIDField = screen.Field{
		Name: "userId", Label: "User ID", Pattern: screen.UserIDPattern,
		Rules: "required,max=8", Message: "User ID can NOT be empty...",
	}
	pageField = screen.Field{
		Name: "page", Label: "Page", Pattern: screen.PagePattern, Rules: "omitempty,numeric",
	}
)

func edit(f screen.Field) screen.Field {
	f.Edit = true
	return f
}

func signOnFlow(gw ports.AuthGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{
			{Name: "userId", Label: "User ID", Pattern: screen.UserIDPattern, Rules: "required", Message: "Please enter User ID ..."},
			{Name: "password", Label: "Password", Pattern: screen.PasswordPattern, Rules: "required", Message: "Please enter Password ...", Secret: true},
		},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			res, err := gw.Login(ctx, domain.NormalizeUserID(req.Fields["userId"]), req.Fields["password"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: res}, nil
		},
	}
}

func menuFlow(gw ports.MenuGateway, menuType string) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{{
			Name: "option", Label: "Option", Pattern: screen.MenuOptionPattern,
			Rules: "omitempty,numeric", Message: "Please enter a valid option number...",
		}},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			menu, err := gw.Menu(ctx, req.Token, menuType)
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: menu}, nil
		},
	}
}

// SelectOption resolves the option number typed on a menu screen. It reports
// false when the menu is not loaded, the number is out of range, or the
// option is disabled.
func SelectOption(c screen.Context) (domain.MenuOption, bool) {
	menu, ok := c.Data.(*domain.Menu)
	if !ok || menu == nil {
		return domain.MenuOption{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.Fields["option"]))
	if err != nil {
		return domain.MenuOption{}, false
	}
	return menu.Select(n)
}

func lookupAccount(gw ports.AccountGateway) func(context.Context, screen.Request) (screen.Lookup, error) {
	return func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
		acct, err := gw.GetAccount(ctx, req.Token, req.Fields["accountId"])
		if err != nil {
			return screen.Lookup{}, err
		}
		return screen.Lookup{Data: acct}, nil
	}
}

func accountViewFlow(gw ports.AccountGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{accountIDField},
		Lookup: lookupAccount(gw),
	}
}

func accountUpdateFlow(gw ports.AccountGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{
			accountIDField,
			{Name: "activeStatus", Label: "Active Status", Pattern: screen.FlagPattern, Rules: "required,oneof=Y N", Message: "Account Active Status must be Y or N", Edit: true},
			{Name: "creditLimit", Label: "Credit Limit", Pattern: screen.AmountPattern, Rules: "required,numeric", Message: "Credit Limit is not valid", Edit: true},
			{Name: "cashCreditLimit", Label: "Cash Credit Limit", Pattern: screen.AmountPattern, Rules: "required,numeric", Message: "Cash Credit Limit is not valid", Edit: true},
			{Name: "groupId", Label: "Group ID", Rules: "max=10", Message: "Group ID must be at most 10 characters", Edit: true},
		},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			acct, err := gw.GetAccount(ctx, req.Token, req.Fields["accountId"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: acct, Fields: map[string]string{
				"activeStatus":    acct.ActiveStatus,
				"creditLimit":     formatAmount(acct.CreditLimit),
				"cashCreditLimit": formatAmount(acct.CashCreditLimit),
				"groupId":         acct.GroupID,
			}}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			credit, err := parseAmount("Credit Limit", req.Fields["creditLimit"])
			if err != nil {
				return nil, err
			}
			cash, err := parseAmount("Cash Credit Limit", req.Fields["cashCreditLimit"])
			if err != nil {
				return nil, err
			}
			acct := req.Data.(*domain.Account)
			return gw.UpdateAccount(ctx, req.Token, acct.AccountID, domain.AccountUpdate{
				ActiveStatus:    strings.ToUpper(req.Fields["activeStatus"]),
				CreditLimit:     credit,
				CashCreditLimit: cash,
				GroupID:         req.Fields["groupId"],
			})
		},
	}
}

func billPaymentFlow(gw ports.AccountGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{accountIDField},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			acct, err := gw.GetAccount(ctx, req.Token, req.Fields["accountId"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: acct, NothingToDo: !acct.HasBalanceDue()}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			return gw.PayBill(ctx, req.Token, req.Data.(*domain.Account).AccountID)
		},
	}
}

func cardListFlow(gw ports.CardGateway) *screen.Flow {
	filter := accountIDField
	filter.Rules = "omitempty,len=11,numeric"
	return &screen.Flow{
		Fields: []screen.Field{filter, pageField},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			page, err := gw.ListCards(ctx, req.Token, req.Fields["accountId"], pageRequest(req.Fields))
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: page}, nil
		},
	}
}

func cardFields() []screen.Field {
	return []screen.Field{
		{Name: "embossedName", Label: "Name on Card", Rules: "required,max=50", Message: "Card name can NOT be empty..."},
		{Name: "expiryMonth", Label: "Expiry Month", Pattern: screen.MonthPattern, Rules: "required,month", Message: "Card expiry month must be between 1 and 12"},
		{Name: "expiryYear", Label: "Expiry Year", Pattern: screen.YearPattern, Rules: "required,len=4,numeric", Message: "Invalid card expiry year"},
		{Name: "activeStatus", Label: "Active Status", Pattern: screen.FlagPattern, Rules: "required,oneof=Y N", Message: "Card Active Status must be Y or N"},
	}
}

func cardAddFlow(gw ports.CardGateway) *screen.Flow {
	fields := append([]screen.Field{cardNumberField, accountIDField}, cardFields()...)
	return &screen.Flow{
		Fields: fields,
		// The add screens review locally before anything is sent.
		Lookup: func(_ context.Context, req screen.Request) (screen.Lookup, error) {
			month, _ := strconv.Atoi(req.Fields["expiryMonth"])
			year, _ := strconv.Atoi(req.Fields["expiryYear"])
			return screen.Lookup{Data: &domain.Card{
				CardNumber:   req.Fields["cardNumber"],
				AccountID:    req.Fields["accountId"],
				EmbossedName: strings.ToUpper(strings.TrimSpace(req.Fields["embossedName"])),
				ExpiryMonth:  month,
				ExpiryYear:   year,
				ActiveStatus: strings.ToUpper(req.Fields["activeStatus"]),
			}}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			return gw.AddCard(ctx, req.Token, req.Data.(*domain.Card))
		},
	}
}

func cardViewFlow(gw ports.CardGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{cardNumberField},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			card, err := gw.GetCard(ctx, req.Token, req.Fields["cardNumber"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: card}, nil
		},
	}
}

func cardUpdateFlow(gw ports.CardGateway) *screen.Flow {
	fields := []screen.Field{cardNumberField}
	for _, f := range cardFields() {
		fields = append(fields, edit(f))
	}
	return &screen.Flow{
		Fields: fields,
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			card, err := gw.GetCard(ctx, req.Token, req.Fields["cardNumber"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: card, Fields: map[string]string{
				"embossedName": card.EmbossedName,
				"expiryMonth":  strconv.Itoa(card.ExpiryMonth),
				"expiryYear":   strconv.Itoa(card.ExpiryYear),
				"activeStatus": card.ActiveStatus,
			}}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			month, _ := strconv.Atoi(req.Fields["expiryMonth"])
			year, _ := strconv.Atoi(req.Fields["expiryYear"])
			return gw.UpdateCard(ctx, req.Token, req.Data.(*domain.Card).CardNumber, domain.CardUpdate{
				EmbossedName: strings.ToUpper(strings.TrimSpace(req.Fields["embossedName"])),
				ExpiryMonth:  month,
				ExpiryYear:   year,
				ActiveStatus: strings.ToUpper(req.Fields["activeStatus"]),
			})
		},
	}
}

func transactionListFlow(gw ports.TransactionGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{pageField},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			page, err := gw.ListTransactions(ctx, req.Token, pageRequest(req.Fields))
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: page}, nil
		},
	}
}

func transactionViewFlow(gw ports.TransactionGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{{
			Name: "transactionId", Label: "Transaction ID", Pattern: screen.TxnIDPattern,
			Rules: "required,numeric", Message: "Tran ID can NOT be empty...",
		}},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			tx, err := gw.GetTransaction(ctx, req.Token, req.Fields["transactionId"])
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: tx}, nil
		},
	}
}

func transactionAddFlow(gw ports.TransactionGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{
			cardNumberField,
			{Name: "typeCode", Label: "Type CD", Pattern: screen.MonthPattern, Rules: "required,len=2,numeric", Message: "Type CD must be 2 digits"},
			{Name: "categoryCode", Label: "Category CD", Pattern: screen.YearPattern, Rules: "required,numeric", Message: "Category CD must be Numeric..."},
			{Name: "source", Label: "Source", Rules: "max=10", Message: "Source must be at most 10 characters"},
			{Name: "description", Label: "Description", Rules: "required,max=100", Message: "Description can NOT be empty..."},
			{Name: "amount", Label: "Amount", Pattern: screen.AmountPattern, Rules: "required,numeric,nonzero_amount", Message: "Amount should be a non zero amount"},
			{Name: "merchantId", Label: "Merchant ID", Pattern: screen.AccountIDPattern, Rules: "omitempty,numeric", Message: "Merchant ID must be Numeric..."},
			{Name: "merchantName", Label: "Merchant Name", Rules: "required,max=50", Message: "Merchant Name can NOT be empty..."},
			{Name: "merchantCity", Label: "Merchant City", Rules: "max=50", Message: "Merchant City is too long"},
			{Name: "merchantZip", Label: "Merchant Zip", Rules: "max=10", Message: "Merchant Zip is too long"},
		},
		Lookup: func(_ context.Context, req screen.Request) (screen.Lookup, error) {
			amount, err := parseAmount("Amount", req.Fields["amount"])
			if err != nil {
				return screen.Lookup{}, err
			}
			category, _ := strconv.Atoi(req.Fields["categoryCode"])
			return screen.Lookup{Data: &ports.AddTransactionInput{
				CardNumber:   req.Fields["cardNumber"],
				TypeCode:     req.Fields["typeCode"],
				CategoryCode: category,
				Source:       req.Fields["source"],
				Description:  req.Fields["description"],
				Amount:       amount,
				MerchantID:   req.Fields["merchantId"],
				MerchantName: req.Fields["merchantName"],
				MerchantCity: req.Fields["merchantCity"],
				MerchantZip:  req.Fields["merchantZip"],
			}}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			return gw.AddTransaction(ctx, req.Token, *req.Data.(*ports.AddTransactionInput))
		},
	}
}

// reportRequest is what the reports screen asks the operator to confirm.
type reportRequest struct {
	ReportType string    `json:"reportType"`
	StartDate  time.Time `json:"startDate,omitempty"`
	EndDate    time.Time `json:"endDate,omitempty"`
}

func reportFlow(gw ports.TransactionGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{
			{Name: "reportType", Label: "Report Type", Rules: "required,oneof=monthly yearly custom", Message: "Select a report type to print report..."},
			{Name: "startDate", Label: "Start Date", Pattern: screen.DatePattern, Rules: "omitempty,datetime=2006-01-02", Message: "Start Date - Not a valid date..."},
			{Name: "endDate", Label: "End Date", Pattern: screen.DatePattern, Rules: "omitempty,datetime=2006-01-02", Message: "End Date - Not a valid date..."},
		},
		Lookup: func(_ context.Context, req screen.Request) (screen.Lookup, error) {
			r := &reportRequest{ReportType: req.Fields["reportType"]}
			if r.ReportType != domain.ReportCustom {
				return screen.Lookup{Data: r}, nil
			}
			start, err := time.Parse(dateLayout, req.Fields["startDate"])
			if err != nil {
				return screen.Lookup{}, &screen.LocalError{Message: "Start Date can NOT be empty..."}
			}
			end, err := time.Parse(dateLayout, req.Fields["endDate"])
			if err != nil {
				return screen.Lookup{}, &screen.LocalError{Message: "End Date can NOT be empty..."}
			}
			if end.Before(start) {
				return screen.Lookup{}, &screen.LocalError{Message: "Start Date must not be after End Date"}
			}
			r.StartDate, r.EndDate = start, end
			return screen.Lookup{Data: r}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			r := req.Data.(*reportRequest)
			return gw.Report(ctx, req.Token, r.ReportType, r.StartDate, r.EndDate)
		},
	}
}

func userListFlow(gw ports.UserGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{pageField},
		Lookup: func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
			page, err := gw.ListUsers(ctx, req.Token, pageRequest(req.Fields))
			if err != nil {
				return screen.Lookup{}, err
			}
			return screen.Lookup{Data: page}, nil
		},
	}
}

func userFields() []screen.Field {
	return []screen.Field{
		{Name: "firstName", Label: "First Name", Rules: "required,max=20", Message: "First Name can NOT be empty..."},
		{Name: "lastName", Label: "Last Name", Rules: "required,max=20", Message: "Last Name can NOT be empty..."},
		{Name: "userType", Label: "User Type", Pattern: screen.UserTypePattern, Rules: "required,oneof=A U", Message: "User Type can NOT be empty..."},
	}
}

func userAddFlow(gw ports.UserGateway) *screen.Flow {
	fields := []screen.Field{userIDField}
	fields = append(fields, userFields()...)
	fields = append(fields, screen.Field{
		Name: "password", Label: "Password", Pattern: screen.PasswordPattern,
		Rules: "required,max=8", Message: "Password can NOT be empty...", Secret: true,
	})
	return &screen.Flow{
		Fields: fields,
		Lookup: func(_ context.Context, req screen.Request) (screen.Lookup, error) {
			return screen.Lookup{Data: userInput(req.Fields)}, nil
		},
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			return gw.AddUser(ctx, req.Token, *req.Data.(*ports.UserInput))
		},
	}
}

func userUpdateFlow(gw ports.UserGateway) *screen.Flow {
	fields := []screen.Field{userIDField}
	for _, f := range userFields() {
		fields = append(fields, edit(f))
	}
	fields = append(fields, screen.Field{
		Name: "password", Label: "Password", Pattern: screen.PasswordPattern,
		Rules: "max=8", Message: "Password must be at most 8 characters", Secret: true, Edit: true,
	})
	return &screen.Flow{
		Fields: fields,
		Lookup: lookupUser(gw, true),
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			in := userInput(req.Fields)
			in.UserID = req.Data.(*domain.User).UserID
			return gw.UpdateUser(ctx, req.Token, *in)
		},
	}
}

func userDeleteFlow(gw ports.UserGateway) *screen.Flow {
	return &screen.Flow{
		Fields: []screen.Field{userIDField},
		Lookup: lookupUser(gw, false),
		Commit: func(ctx context.Context, req screen.Request) (any, error) {
			u := req.Data.(*domain.User)
			if err := gw.DeleteUser(ctx, req.Token, u.UserID); err != nil {
				return nil, err
			}
			return map[string]string{"message": fmt.Sprintf("User %s has been deleted ...", u.UserID)}, nil
		},
	}
}

func lookupUser(gw ports.UserGateway, prefill bool) func(context.Context, screen.Request) (screen.Lookup, error) {
	return func(ctx context.Context, req screen.Request) (screen.Lookup, error) {
		u, err := gw.GetUser(ctx, req.Token, domain.NormalizeUserID(req.Fields["userId"]))
		if err != nil {
			return screen.Lookup{}, err
		}
		res := screen.Lookup{Data: u}
		if prefill {
			res.Fields = map[string]string{
				"firstName": u.FirstName,
				"lastName":  u.LastName,
				"userType":  u.UserType,
				"password":  "",
			}
		}
		return res, nil
	}
}

func userInput(fields map[string]string) *ports.UserInput {
	return &ports.UserInput{
		UserID:    domain.NormalizeUserID(fields["userId"]),
		FirstName: strings.TrimSpace(fields["firstName"]),
		LastName:  strings.TrimSpace(fields["lastName"]),
		Password:  fields["password"],
		UserType:  strings.ToUpper(fields["userType"]),
	}
}

func pageRequest(fields map[string]string) ports.PageRequest {
	n, err := strconv.Atoi(fields["page"])
	if err != nil || n < 1 {
		n = 1
	}
	return ports.PageRequest{Page: n, PageSize: 10}
}

func parseAmount(label, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &screen.LocalError{Message: label + " is not valid"}
	}
	return domain.RoundCents(f), nil
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
