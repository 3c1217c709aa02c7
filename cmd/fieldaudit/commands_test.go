package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testUserBody = `{"status":"success","message":null,"data":{
    "user_id":7,"user_first_name":"Pat","user_last_name":"Lee",
    "user_email":"pat@example.com","role_id":1,"role_name":"Auditor",
    "role_rank":1,"client_id":1,"client_name":"Acme Brands",
    "client_settings":[
        {"setting_name":"print_voids","setting_value":"true"},
        {"setting_name":"print_conditions","setting_value":"true"},
        {"setting_name":"allow_store_notes","setting_value":"true"},
        {"setting_name":"print_store_notes","setting_value":"true"}
    ],
    "sku_conditions":[
        {"id":2,"name":"Damaged","description":"Damaged packaging"}
    ]}}`

const testStoresBody = `{"status":"success","message":null,"data":[
    {"client_id":1,"chain_id":10,"chain_name":"Harris Market","chain_code":"HM",
     "store_id":100,"store_name":"Uptown","store_identifier":"0042",
     "store_city":"Springfield"}]}`

const testProductsBody = `{"status":"success","message":null,"data":[
    {"chain_x_product_id":7,"client_id":1,"chain_id":10,"product_id":70,
     "brand_name":"Acme","product_name":"Zesty Salsa","upc":"012345678905",
     "current_reorder_code":"Z7"}]}`

func newBackend(t *testing.T, uploads *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payload/v1/":
			*uploads++
			w.Write([]byte(`{"status":"success","message":null,"data":null}`))
		case strings.HasPrefix(r.URL.Path, "/login/"):
			w.Write([]byte(`{"status":"success","message":null,"data":{"session_id":"tok"}}`))
		case strings.HasPrefix(r.URL.Path, "/user/"):
			w.Write([]byte(testUserBody))
		case strings.HasPrefix(r.URL.Path, "/stores/"):
			w.Write([]byte(testStoresBody))
		case strings.HasPrefix(r.URL.Path, "/products/"):
			w.Write([]byte(testProductsBody))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAuditWorkflowEndToEnd(t *testing.T) {
	var uploads int
	server := newBackend(t, &uploads)
	configPath := writeTestConfig(t, server.URL)

	out, _, err := runCLI(t, configPath, "login", "pat@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Logged in as Pat Lee")

	out, _, err = runCLI(t, configPath, "sync")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Catalog refreshed: 1 stores, 1 products")

	out, _, err = runCLI(t, configPath, "stores")
	if err != nil {
		t.Fatalf("stores: %v", err)
	}
	requireContains(t, out, "Uptown #0042")

	out, _, err = runCLI(t, configPath, "audit", "start", "100")
	if err != nil {
		t.Fatalf("audit start: %v", err)
	}
	requireContains(t, out, "Started audit")
	auditID := strings.Fields(out)[2]

	if _, _, err = runCLI(t, configPath, "scan", "add", "7", "--barcode", "012345678905", "--price", "3.99"); err != nil {
		t.Fatalf("scan add: %v", err)
	}

	out, _, err = runCLI(t, configPath, "report", "set", "7", "void")
	if err != nil {
		t.Fatalf("report set: %v", err)
	}
	requireContains(t, out, "Void")

	if _, _, err = runCLI(t, configPath, "conditions", "set", "7", "2"); err != nil {
		t.Fatalf("conditions set: %v", err)
	}

	out, _, err = runCLI(t, configPath, "report", "list")
	if err != nil {
		t.Fatalf("report list: %v", err)
	}
	requireContains(t, out, "explicit")

	if _, _, err = runCLI(t, configPath, "notes", "--text", "aisle resets in progress"); err != nil {
		t.Fatalf("notes: %v", err)
	}

	out, _, err = runCLI(t, configPath, "receipt")
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	requireContains(t, out, "VOID")
	requireContains(t, out, "Zesty Salsa")
	requireContains(t, out, "www.AuditPRO.io")

	out, _, err = runCLI(t, configPath, "audit", "complete")
	if err != nil {
		t.Fatalf("audit complete: %v", err)
	}
	requireContains(t, out, "Completed audit")

	out, _, err = runCLI(t, configPath, "audit", "list")
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	requireContains(t, out, auditID)
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, configPath, "sync")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	requireContains(t, out, "Uploaded 1 audit(s)")
	if uploads != 1 {
		t.Fatalf("expected 1 upload, got %d", uploads)
	}

	out, _, err = runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Completed audits awaiting upload: 0")
}

func TestCommandsRequireLogin(t *testing.T) {
	configPath := writeTestConfig(t, "https://api.invalid/")

	out, _, err := runCLI(t, configPath, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	requireContains(t, out, "Not logged in")

	if _, _, err := runCLI(t, configPath, "audit", "start", "100"); err == nil {
		t.Fatal("audit start should fail when logged out")
	}
	if _, _, err := runCLI(t, configPath, "sync"); err == nil {
		t.Fatal("sync should fail when logged out")
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	configPath := writeTestConfig(t, "https://api.invalid/")
	out, _, err := runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init refuses to overwrite.
	if _, _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("config init should refuse to overwrite")
	}
}

func TestConfigShow(t *testing.T) {
	configPath := writeTestConfig(t, "https://api.example.com/api/")
	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "https://api.example.com/api/")
	requireContains(t, out, "timeout_seconds")
}
