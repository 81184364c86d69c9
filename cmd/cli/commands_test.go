package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/and161185/shopfloor/internal/api"
)

func Test_validators(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"RECEIVE", "issue", " transfer_out ", "TRANSFER_IN", "Adjustment"} {
		if !validMovementType(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if validMovementType("SCRAP") || validMovementType("") {
		t.Fatalf("unknown types must be rejected")
	}

	if !validHireDate("2024-02-29") {
		t.Fatalf("leap day should be valid")
	}
	for _, s := range []string{"2023-02-29", "24-01-01", "2024/01/01", ""} {
		if validHireDate(s) {
			t.Fatalf("%q should be invalid", s)
		}
	}
}

func Test_buildMove(t *testing.T) {
	t.Parallel()

	req, err := buildMove([]string{"-code", "AUTO-001", "-type", "issue", "-qty", "30", "-ref", "WO-1"})
	if err != nil {
		t.Fatalf("buildMove: %v", err)
	}
	if req.Type != "ISSUE" || req.Quantity != 30 || req.ItemCode != "AUTO-001" || req.Reference != "WO-1" {
		t.Fatalf("bad request: %+v", req)
	}

	bad := [][]string{
		{"-type", "ISSUE", "-qty", "1"},
		{"-code", "X", "-type", "SCRAP", "-qty", "1"},
		{"-code", "X", "-type", "ISSUE", "-qty", "0"},
		{"-code", "X", "-type", "ISSUE", "-qty", "-4"},
		{"-code", "X", "-type", "ISSUE", "-qty", "many"},
	}
	for i, args := range bad {
		var ue usageError
		if _, err := buildMove(args); !errors.As(err, &ue) {
			t.Fatalf("case %d: want usageError, got %v", i, err)
		}
	}
}

func Test_buildGetItem(t *testing.T) {
	t.Parallel()

	req, err := buildGetItem([]string{"-code", " AUTO-001 "})
	if err != nil || req.ItemCode != "AUTO-001" {
		t.Fatalf("buildGetItem: %+v, %v", req, err)
	}
	var ue usageError
	if _, err := buildGetItem(nil); !errors.As(err, &ue) {
		t.Fatalf("missing code: want usageError, got %v", err)
	}
}

func Test_buildRegister(t *testing.T) {
	t.Parallel()

	req, err := buildRegister([]string{
		"-u", "jdoe", "-p", "Secret123", "-role", "OPERATOR", "-name", "John Doe", "-dept", "Line 1",
		"-hired", "2024-05-01", "-inactive",
	})
	if err != nil {
		t.Fatalf("buildRegister: %v", err)
	}
	if req.HireDate != "2024-05-01" || req.Active == nil || *req.Active {
		t.Fatalf("bad request: %+v", req)
	}

	if _, err := buildRegister([]string{"-u", "jdoe", "-p", "x"}); err == nil {
		t.Fatalf("missing fields should fail")
	}
	if _, err := buildRegister([]string{"-u", "jdoe", "-p", "x", "-role", "R", "-name", "n", "-dept", "d", "-hired", "01.05.2024"}); err == nil {
		t.Fatalf("bad hire date should fail")
	}
}

func Test_buildItem(t *testing.T) {
	t.Parallel()

	req, err := buildItem([]string{"-code", "AUTO-001", "-desc", "Brake pad set", "-qty", "100", "-price", "12.50", "-reorder", "20", "-min", "10"})
	if err != nil {
		t.Fatalf("buildItem: %v", err)
	}
	if !req.Item.UnitPrice.Equal(decimal.RequireFromString("12.5")) || req.Item.QuantityOnHand != 100 {
		t.Fatalf("bad item: %+v", req.Item)
	}
	if _, err := buildItem([]string{"-code", "X", "-desc", "d", "-price", "-1"}); err == nil {
		t.Fatalf("negative price should fail")
	}
	if _, err := buildItem([]string{"-code", "X", "-desc", "d", "-price", "cheap"}); err == nil {
		t.Fatalf("non-decimal price should fail")
	}
	if _, err := buildItem([]string{"-desc", "d"}); err == nil {
		t.Fatalf("missing code should fail")
	}
}

func Test_buildLoginAndPasswd(t *testing.T) {
	t.Parallel()

	if _, err := buildLogin([]string{"-u", "a"}); err == nil {
		t.Fatalf("missing password should fail")
	}
	if r, err := buildLogin([]string{"-u", "a", "-p", "b"}); err != nil || r.Username != "a" || r.Password != "b" {
		t.Fatalf("buildLogin: %+v %v", r, err)
	}
	if _, err := buildPasswd([]string{"-old", "a"}); err == nil {
		t.Fatalf("missing new password should fail")
	}
}

func Test_writeTables(t *testing.T) {
	out := captureStdout(t)

	writeItems(stdout, []api.Item{
		{ItemCode: "AUTO-001", Description: "Brake pad set", QuantityOnHand: 5, UnitPrice: decimal.RequireFromString("12.5"), ReorderPoint: 20, LowStock: true},
		{ItemCode: "AUTO-002", Description: "Filter", QuantityOnHand: 0, OutOfStock: true},
	})
	s := out.String()
	if !strings.Contains(s, "CODE") || !strings.Contains(s, "12.50") || !strings.Contains(s, "low") || !strings.Contains(s, "out") {
		t.Fatalf("unexpected items table:\n%s", s)
	}

	out.Reset()
	writeMovements(stdout, []api.Movement{{ItemCode: "AUTO-001", Type: "ISSUE", Quantity: 30, Actor: "alice", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}})
	if !strings.Contains(out.String(), "2025-01-02T03:04:05Z") || !strings.Contains(out.String(), "alice") {
		t.Fatalf("unexpected movements table:\n%s", out.String())
	}
}

type fakeClient struct {
	api.ShopfloorClient
	resp *api.LoginResponse
	err  error
}

func (f *fakeClient) Login(context.Context, *api.LoginRequest, ...grpc.CallOption) (*api.LoginResponse, error) {
	return f.resp, f.err
}

func Test_login_SavesToken(t *testing.T) {
	_ = withTmpConfig(t)
	out := captureStdout(t)

	cli := &fakeClient{resp: &api.LoginResponse{AccessToken: "jwt", ExpiresAt: time.Now().Add(time.Minute), Role: "ADMIN"}}
	if err := login(context.Background(), cli, &api.LoginRequest{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok, err := loadToken(); err != nil || tok != "jwt" {
		t.Fatalf("token not saved: %q %v", tok, err)
	}
	if !strings.Contains(out.String(), "ADMIN") {
		t.Fatalf("role not printed: %q", out.String())
	}

	_ = dropToken()
	cli.err = errors.New("rpc failed")
	if err := login(context.Background(), cli, &api.LoginRequest{Username: "a", Password: "b"}); err == nil {
		t.Fatalf("want error")
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("failed login must not save a token")
	}
}
