package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/shopfloor/internal/api"
)

// usageError is a local argument problem; no request was sent.
type usageError string

func (e usageError) Error() string { return string(e) }

// ------- validators -------

var reHireDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var movementTypes = map[string]bool{
	"RECEIVE": true, "ISSUE": true, "TRANSFER_OUT": true, "TRANSFER_IN": true, "ADJUSTMENT": true,
}

func validMovementType(s string) bool { return movementTypes[strings.ToUpper(strings.TrimSpace(s))] }

func validHireDate(s string) bool {
	if !reHireDate.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ------- request builders -------

func buildRegister(args []string) (*api.RegisterRequest, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	req := &api.RegisterRequest{}
	fs.StringVar(&req.Username, "u", "", "username")
	fs.StringVar(&req.Password, "p", "", "password")
	fs.StringVar(&req.Role, "role", "", "role")
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Department, "dept", "", "department")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Phone, "phone", "", "phone")
	fs.StringVar(&req.EmployeeID, "emp", "", "employee id (generated when empty)")
	fs.StringVar(&req.HireDate, "hired", "", "hire date YYYY-MM-DD (today when empty)")
	inactive := fs.Bool("inactive", false, "create the account disabled")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if req.Username == "" || req.Password == "" || req.Role == "" || req.FullName == "" || req.Department == "" {
		return nil, usageError("need -u -p -role -name -dept")
	}
	if req.HireDate != "" && !validHireDate(req.HireDate) {
		return nil, usageError("-hired must be YYYY-MM-DD")
	}
	if *inactive {
		active := false
		req.Active = &active
	}
	return req, nil
}

func buildLogin(args []string) (*api.LoginRequest, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if *u == "" || *p == "" {
		return nil, usageError("need -u and -p")
	}
	return &api.LoginRequest{Username: *u, Password: *p}, nil
}

func buildPasswd(args []string) (*api.ChangePasswordRequest, error) {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	oldPwd := fs.String("old", "", "current password")
	newPwd := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if *oldPwd == "" || *newPwd == "" {
		return nil, usageError("need -old and -new")
	}
	return &api.ChangePasswordRequest{OldPassword: *oldPwd, NewPassword: *newPwd}, nil
}

func buildItem(args []string) (*api.CreateItemRequest, error) {
	fs := flag.NewFlagSet("item-add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var it api.Item
	fs.StringVar(&it.ItemCode, "code", "", "item code")
	fs.StringVar(&it.Description, "desc", "", "description")
	fs.StringVar(&it.Category, "cat", "", "category")
	fs.StringVar(&it.Location, "loc", "", "location")
	fs.Int64Var(&it.QuantityOnHand, "qty", 0, "initial quantity")
	fs.Int64Var(&it.ReorderPoint, "reorder", 0, "reorder point")
	fs.Int64Var(&it.MinStockLevel, "min", 0, "minimum stock level")
	price := fs.String("price", "0", "unit price")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if it.ItemCode == "" || it.Description == "" {
		return nil, usageError("need -code and -desc")
	}
	p, err := decimal.NewFromString(*price)
	if err != nil || p.IsNegative() {
		return nil, usageError("-price must be a non-negative decimal")
	}
	it.UnitPrice = p
	return &api.CreateItemRequest{Item: it}, nil
}

func buildGetItem(args []string) (*api.GetItemRequest, error) {
	fs := flag.NewFlagSet("item", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	code := fs.String("code", "", "item code")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if strings.TrimSpace(*code) == "" {
		return nil, usageError("need -code")
	}
	return &api.GetItemRequest{ItemCode: strings.TrimSpace(*code)}, nil
}

func buildMove(args []string) (*api.RecordMovementRequest, error) {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	req := &api.RecordMovementRequest{}
	fs.StringVar(&req.ItemCode, "code", "", "item code")
	fs.StringVar(&req.Type, "type", "", "movement type")
	fs.Int64Var(&req.Quantity, "qty", 0, "quantity (> 0)")
	fs.StringVar(&req.Reference, "ref", "", "reference (work order, PO, ...)")
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err.Error())
	}
	if req.ItemCode == "" || req.Type == "" {
		return nil, usageError("need -code -type -qty")
	}
	if !validMovementType(req.Type) {
		return nil, usageError(fmt.Sprintf("unknown movement type %q", req.Type))
	}
	if req.Quantity <= 0 {
		return nil, usageError("-qty must be positive")
	}
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	return req, nil
}

// ------- output -------

func writeItems(w io.Writer, items []api.Item) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tQTY\tPRICE\tREORDER\tMIN\tFLAGS\tDESCRIPTION")
	for _, it := range items {
		var flags []string
		if it.OutOfStock {
			flags = append(flags, "out")
		}
		if it.LowStock {
			flags = append(flags, "low")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%s\t%s\n",
			it.ItemCode, it.QuantityOnHand, it.UnitPrice.StringFixed(2), it.ReorderPoint, it.MinStockLevel,
			strings.Join(flags, ","), it.Description)
	}
	_ = tw.Flush()
}

func writeMovements(w io.Writer, mvs []api.Movement) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tITEM\tTYPE\tQTY\tACTOR\tREF")
	for _, mv := range mvs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			mv.CreatedAt.UTC().Format(time.RFC3339), mv.ItemCode, mv.Type, mv.Quantity, mv.Actor, mv.Reference)
	}
	_ = tw.Flush()
}

// ------- commands -------

func cmdRegister(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildRegister(args)
	if err != nil {
		return err
	}
	// registration may be open, so a missing token is not an error here
	tok, _ := loadToken()
	cc, cli, err := dial(o, tok)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.Register(ctx, req)
	if err != nil {
		return err
	}
	printJSON(resp)
	return nil
}

func cmdLogin(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildLogin(args)
	if err != nil {
		return err
	}
	cc, cli, err := dial(o, "")
	if err != nil {
		return err
	}
	defer cc.Close()
	return login(ctx, cli, req)
}

// login authenticates and stores the access token for later commands.
func login(ctx context.Context, cli api.ShopfloorClient, req *api.LoginRequest) error {
	resp, err := cli.Login(ctx, req)
	if err != nil {
		return err
	}
	exp := resp.ExpiresAt
	if exp.IsZero() {
		exp = time.Now().Add(15 * time.Minute)
	}
	if err := saveToken(tokenFile{AccessToken: resp.AccessToken, ExpiresAt: exp, Username: req.Username, Role: resp.Role}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok (%s)\n", resp.Role)
	return nil
}

func cmdPasswd(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildPasswd(args)
	if err != nil {
		return err
	}
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	if _, err := cli.ChangePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func cmdItemAdd(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildItem(args)
	if err != nil {
		return err
	}
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.CreateItem(ctx, req)
	if err != nil {
		return err
	}
	printJSON(resp.Item)
	return nil
}

func cmdItem(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildGetItem(args)
	if err != nil {
		return err
	}
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.GetItem(ctx, req)
	if err != nil {
		return err
	}
	writeItems(stdout, []api.Item{resp.Item})
	return nil
}

func cmdItems(ctx context.Context, o dialOpts) error {
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.ListItems(ctx, &api.ListItemsRequest{})
	if err != nil {
		return err
	}
	writeItems(stdout, resp.Items)
	return nil
}

func cmdMove(ctx context.Context, args []string, o dialOpts) error {
	req, err := buildMove(args)
	if err != nil {
		return err
	}
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.RecordMovement(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.MovementID)
	return nil
}

func cmdMovements(ctx context.Context, o dialOpts) error {
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.ListMovements(ctx, &api.ListMovementsRequest{})
	if err != nil {
		return err
	}
	writeMovements(stdout, resp.Movements)
	return nil
}

func cmdStats(ctx context.Context, o dialOpts) error {
	cc, cli, err := dialAuthed(o)
	if err != nil {
		return err
	}
	defer cc.Close()
	resp, err := cli.GetStatistics(ctx, &api.GetStatisticsRequest{})
	if err != nil {
		return err
	}
	printJSON(resp)
	return nil
}
