package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"localshare/core"
	"localshare/crypto"
	"localshare/storage"
)

func newTestServer(t *testing.T, authToken string) (*Server, *core.Node) {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB())
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return NewServer(node, authToken), node
}

func testBech32(t *testing.T, b byte) string {
	t.Helper()
	var raw [20]byte
	raw[0] = b
	return crypto.NewAddress(crypto.LSHPrefix, raw[:]).String()
}

func post(t *testing.T, server *Server, token, method string, params ...interface{}) (*httptest.ResponseRecorder, RPCResponse) {
	t.Helper()
	if params == nil {
		params = []interface{}{}
	}
	payload := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method, "params": params}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	var resp RPCResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, recorder.Body.String())
	}
	return recorder, resp
}

func resultInto(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected RPC error: %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestServeRejectsMalformedEnvelope(t *testing.T) {
	server, _ := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("empty body should be rejected, got %d", recorder.Code)
	}

	_, resp := post(t, server, "", "")
	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Fatalf("missing method should be rejected: %+v", resp.Error)
	}

	_, resp = post(t, server, "", "no_such_method")
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method should 404: %+v", resp.Error)
	}
}

func TestWriteMethodsRequireAuthWhenConfigured(t *testing.T) {
	server, _ := newTestServer(t, "sekrit")
	owner := testBech32(t, 0x11)

	recorder, resp := post(t, server, "", "equity_registerBusiness", map[string]string{"caller": owner, "name": "Corner Bakery"})
	if recorder.Code != http.StatusUnauthorized || resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got code=%d error=%+v", recorder.Code, resp.Error)
	}

	recorder, resp = post(t, server, "wrong", "equity_registerBusiness", map[string]string{"caller": owner, "name": "Corner Bakery"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("bad token should be rejected, got %d", recorder.Code)
	}

	_, resp = post(t, server, "sekrit", "equity_registerBusiness", map[string]string{"caller": owner, "name": "Corner Bakery"})
	if resp.Error != nil {
		t.Fatalf("valid token should pass: %+v", resp.Error)
	}
}

func TestFullFlowOverRPC(t *testing.T) {
	server, node := newTestServer(t, "")
	owner := testBech32(t, 0x11)
	buyer := testBech32(t, 0x22)

	var business businessResult
	_, resp := post(t, server, "", "equity_registerBusiness", map[string]string{"caller": owner, "name": "Corner Bakery"})
	resultInto(t, resp, &business)
	if business.Owner != owner || business.Name != "Corner Bakery" || business.Listed {
		t.Fatalf("unexpected business: %+v", business)
	}

	_, resp = post(t, server, "", "equity_configureOffering", map[string]interface{}{
		"caller": owner, "totalShares": 100, "pricePerShare": 1000,
	})
	resultInto(t, resp, &business)
	if business.TotalShares != 100 || business.PricePerShare != 1000 || business.Treasury != owner {
		t.Fatalf("unexpected economics: %+v", business)
	}

	_, resp = post(t, server, "", "equity_initShareMint", map[string]string{"caller": owner})
	resultInto(t, resp, &business)
	if business.ShareMint == "" {
		t.Fatalf("share mint missing: %+v", business)
	}

	_, resp = post(t, server, "", "equity_listBusiness", map[string]string{"caller": owner})
	resultInto(t, resp, &business)
	if !business.Listed {
		t.Fatalf("business should be listed: %+v", business)
	}

	buyerAddr, err := crypto.DecodeAddress(buyer)
	if err != nil {
		t.Fatalf("decode buyer: %v", err)
	}
	if err := node.FundAccount(buyerAddr.Array(), big.NewInt(50_000)); err != nil {
		t.Fatalf("fund buyer: %v", err)
	}

	var purchase purchaseResult
	_, resp = post(t, server, "", "equity_buyShares", map[string]interface{}{
		"caller": buyer, "business": business.Address, "amount": 30,
	})
	resultInto(t, resp, &purchase)
	if purchase.Cost != 30_000 || purchase.VaultRemaining != 70 {
		t.Fatalf("unexpected purchase: %+v", purchase)
	}

	var vault balanceResult
	_, resp = post(t, server, "", "equity_getVaultBalance", map[string]string{"business": business.Address})
	resultInto(t, resp, &vault)
	if vault.Balance.Uint64() != 70 {
		t.Fatalf("unexpected vault balance: %s", vault.Balance)
	}

	var shares balanceResult
	_, resp = post(t, server, "", "equity_getShareBalance", map[string]string{"business": business.Address, "holder": buyer})
	resultInto(t, resp, &shares)
	if shares.Balance.Uint64() != 30 {
		t.Fatalf("unexpected share balance: %s", shares.Balance)
	}

	var fetched businessResult
	_, resp = post(t, server, "", "equity_getBusiness", map[string]string{"owner": owner})
	resultInto(t, resp, &fetched)
	if fetched.Address != business.Address {
		t.Fatalf("owner lookup mismatch: %s vs %s", fetched.Address, business.Address)
	}
}

func TestEngineErrorsMapToStatusCodes(t *testing.T) {
	server, _ := newTestServer(t, "")
	owner := testBech32(t, 0x11)

	recorder, resp := post(t, server, "", "equity_listBusiness", map[string]string{"caller": owner})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing business should 404, got %d", recorder.Code)
	}
	if resp.Error == nil {
		t.Fatal("expected error payload")
	}

	_, resp = post(t, server, "", "equity_registerBusiness", map[string]string{"caller": owner, "name": "   "})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("empty name should be invalid params: %+v", resp.Error)
	}
}

func TestDevFaucet(t *testing.T) {
	server, _ := newTestServer(t, "")
	addr := testBech32(t, 0x42)

	recorder, _ := post(t, server, "", "dev_fund", map[string]string{"address": addr})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("disabled faucet should 404, got %d", recorder.Code)
	}

	server.EnableDevFaucet(1_000_000)
	var balance balanceResult
	_, resp := post(t, server, "", "dev_fund", map[string]string{"address": addr})
	resultInto(t, resp, &balance)
	if balance.Balance.Uint64() != 1_000_000 {
		t.Fatalf("unexpected funded balance: %s", balance.Balance)
	}
}
