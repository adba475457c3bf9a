package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"localshare/crypto"
	"localshare/native/equity"
)

type initConfigParams struct {
	Admin       string `json:"admin"`
	PaymentMint string `json:"paymentMint"`
}

type registerBusinessParams struct {
	Caller string `json:"caller"`
	Name   string `json:"name"`
}

type configureOfferingParams struct {
	Caller        string `json:"caller"`
	TotalShares   uint64 `json:"totalShares"`
	PricePerShare uint64 `json:"pricePerShare"`
	Treasury      string `json:"treasury,omitempty"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type buySharesParams struct {
	Caller   string `json:"caller"`
	Business string `json:"business"`
	Amount   uint64 `json:"amount"`
}

type createOfferingParams struct {
	Caller        string `json:"caller"`
	PricePerShare uint64 `json:"pricePerShare"`
	InitialShares uint64 `json:"initialShares"`
}

type buyFromOfferingParams struct {
	Caller   string `json:"caller"`
	Offering string `json:"offering"`
	Amount   uint64 `json:"amount"`
}

type businessQueryParams struct {
	Address string `json:"address,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

type offeringQueryParams struct {
	Address string `json:"address"`
}

type vaultQueryParams struct {
	Business string `json:"business"`
}

type shareBalanceParams struct {
	Business string `json:"business,omitempty"`
	Mint     string `json:"mint,omitempty"`
	Holder   string `json:"holder"`
}

type addressParams struct {
	Address string `json:"address"`
}

type configResult struct {
	Admin       string `json:"admin"`
	PaymentMint string `json:"paymentMint"`
}

type businessResult struct {
	Address       string `json:"address"`
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	ShareMint     string `json:"shareMint,omitempty"`
	TotalShares   uint64 `json:"totalShares"`
	PricePerShare uint64 `json:"pricePerShare"`
	Treasury      string `json:"treasury"`
	Listed        bool   `json:"listed"`
}

type purchaseResult struct {
	Business       string `json:"business"`
	Buyer          string `json:"buyer"`
	Amount         uint64 `json:"amount"`
	Cost           uint64 `json:"cost"`
	VaultRemaining uint64 `json:"vaultRemaining"`
}

type offeringResult struct {
	Address         string `json:"address"`
	Business        string `json:"business"`
	ShareMint       string `json:"shareMint"`
	PricePerShare   uint64 `json:"pricePerShare"`
	RemainingShares uint64 `json:"remainingShares"`
	Active          bool   `json:"active"`
}

type balanceResult struct {
	Address string   `json:"address"`
	Balance *big.Int `json:"balance"`
}

func decodeBech32(addr string) ([20]byte, error) {
	var out [20]byte
	decoded, err := crypto.DecodeAddress(strings.TrimSpace(addr))
	if err != nil {
		return out, err
	}
	copy(out[:], decoded.Bytes())
	return out, nil
}

func encodeAddr(addr [20]byte) string {
	return crypto.NewAddress(crypto.LSHPrefix, addr[:]).String()
}

func singleParam(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func formatBusiness(addr [20]byte, business *equity.Business) businessResult {
	result := businessResult{
		Address:       encodeAddr(addr),
		Owner:         encodeAddr(business.Owner),
		Name:          business.Name,
		TotalShares:   business.TotalShares,
		PricePerShare: business.PricePerShare,
		Treasury:      encodeAddr(business.Treasury),
		Listed:        business.Listed,
	}
	if business.MintInitialized() {
		result.ShareMint = encodeAddr(business.ShareMint)
	}
	return result
}

func formatOffering(addr [20]byte, offering *equity.Offering) offeringResult {
	return offeringResult{
		Address:         encodeAddr(addr),
		Business:        encodeAddr(offering.Business),
		ShareMint:       encodeAddr(offering.ShareMint),
		PricePerShare:   offering.PricePerShare,
		RemainingShares: offering.RemainingShares,
		Active:          offering.Active,
	}
}

// writeEngineError maps engine sentinel errors onto JSON-RPC error responses.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	status := http.StatusBadRequest
	code := codeInvalidParams
	switch {
	case errors.Is(err, equity.ErrBusinessNotFound),
		errors.Is(err, equity.ErrOfferingNotFound),
		errors.Is(err, equity.ErrConfigNotInitialized):
		status = http.StatusNotFound
	case errors.Is(err, equity.ErrInvalidBusinessOwner):
		status = http.StatusForbidden
		code = codeUnauthorized
	}
	writeError(w, status, id, code, err.Error(), nil)
}

func (s *Server) handleInitConfig(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params initConfigParams
	if !singleParam(w, req, &params) {
		return
	}
	admin, err := decodeBech32(params.Admin)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid admin address", err.Error())
		return
	}
	paymentMint, err := decodeBech32(params.PaymentMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid paymentMint address", err.Error())
		return
	}
	config, err := s.node.EquityInitConfig(admin, paymentMint)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, configResult{
		Admin:       encodeAddr(config.Admin),
		PaymentMint: encodeAddr(config.PaymentMint),
	})
}

func (s *Server) handleRegisterBusiness(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params registerBusinessParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	business, err := s.node.EquityRegisterBusiness(caller, params.Name)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	addr, _ := equity.DeriveBusinessAddress(caller)
	writeResult(w, req.ID, formatBusiness(addr, business))
}

func (s *Server) handleConfigureOffering(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params configureOfferingParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	var treasury [20]byte
	if strings.TrimSpace(params.Treasury) != "" {
		treasury, err = decodeBech32(params.Treasury)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid treasury address", err.Error())
			return
		}
	}
	business, err := s.node.EquityConfigureOffering(caller, params.TotalShares, params.PricePerShare, treasury)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	addr, _ := equity.DeriveBusinessAddress(caller)
	writeResult(w, req.ID, formatBusiness(addr, business))
}

func (s *Server) handleInitShareMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params callerParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	business, err := s.node.EquityInitShareMint(caller)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	addr, _ := equity.DeriveBusinessAddress(caller)
	writeResult(w, req.ID, formatBusiness(addr, business))
}

func (s *Server) handleListBusiness(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params callerParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	business, err := s.node.EquityListBusiness(caller)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	addr, _ := equity.DeriveBusinessAddress(caller)
	writeResult(w, req.ID, formatBusiness(addr, business))
}

func (s *Server) handleBuyShares(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params buySharesParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	business, err := decodeBech32(params.Business)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid business address", err.Error())
		return
	}
	purchase, err := s.node.EquityBuyShares(caller, business, params.Amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, purchaseResult{
		Business:       encodeAddr(purchase.Business),
		Buyer:          encodeAddr(purchase.Buyer),
		Amount:         purchase.Amount,
		Cost:           purchase.Cost,
		VaultRemaining: purchase.VaultRemaining,
	})
}

func (s *Server) handleCreateOffering(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params createOfferingParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	offering, err := s.node.EquityCreateOffering(caller, params.PricePerShare, params.InitialShares)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	addr, _ := equity.DeriveOfferingAddress(offering.Business, offering.ShareMint)
	writeResult(w, req.ID, formatOffering(addr, offering))
}

func (s *Server) handleBuySharesFromOffering(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params buyFromOfferingParams
	if !singleParam(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	offeringAddr, err := decodeBech32(params.Offering)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid offering address", err.Error())
		return
	}
	offering, err := s.node.EquityBuySharesFromOffering(caller, offeringAddr, params.Amount)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatOffering(offeringAddr, offering))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	config, ok, err := s.node.EquityConfig()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load config", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "config not initialized", nil)
		return
	}
	writeResult(w, req.ID, configResult{
		Admin:       encodeAddr(config.Admin),
		PaymentMint: encodeAddr(config.PaymentMint),
	})
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params businessQueryParams
	if !singleParam(w, req, &params) {
		return
	}
	var (
		addr     [20]byte
		business *equity.Business
		ok       bool
		err      error
	)
	switch {
	case strings.TrimSpace(params.Address) != "":
		addr, err = decodeBech32(params.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid business address", err.Error())
			return
		}
		business, ok, err = s.node.EquityBusiness(addr)
	case strings.TrimSpace(params.Owner) != "":
		var owner [20]byte
		owner, err = decodeBech32(params.Owner)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
			return
		}
		addr, business, ok, err = s.node.EquityBusinessByOwner(owner)
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "address or owner required", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load business", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "business not found", nil)
		return
	}
	writeResult(w, req.ID, formatBusiness(addr, business))
}

func (s *Server) handleGetOffering(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params offeringQueryParams
	if !singleParam(w, req, &params) {
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid offering address", err.Error())
		return
	}
	offering, ok, err := s.node.EquityOffering(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load offering", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "offering not found", nil)
		return
	}
	writeResult(w, req.ID, formatOffering(addr, offering))
}

func (s *Server) handleGetVaultBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params vaultQueryParams
	if !singleParam(w, req, &params) {
		return
	}
	business, err := decodeBech32(params.Business)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid business address", err.Error())
		return
	}
	balance, err := s.node.EquityVaultBalance(business)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load vault balance", err.Error())
		return
	}
	vault, _ := equity.DeriveSharesVaultAddress(business)
	writeResult(w, req.ID, balanceResult{Address: encodeAddr(vault), Balance: balance})
}

func (s *Server) handleGetShareBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params shareBalanceParams
	if !singleParam(w, req, &params) {
		return
	}
	holder, err := decodeBech32(params.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid holder address", err.Error())
		return
	}
	var mint [20]byte
	switch {
	case strings.TrimSpace(params.Mint) != "":
		mint, err = decodeBech32(params.Mint)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid mint address", err.Error())
			return
		}
	case strings.TrimSpace(params.Business) != "":
		var businessAddr [20]byte
		businessAddr, err = decodeBech32(params.Business)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid business address", err.Error())
			return
		}
		business, ok, loadErr := s.node.EquityBusiness(businessAddr)
		if loadErr != nil {
			writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load business", loadErr.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "business not found", nil)
			return
		}
		if !business.MintInitialized() {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "share mint not initialized", nil)
			return
		}
		mint = business.ShareMint
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "mint or business required", nil)
		return
	}
	balance, err := s.node.EquityTokenBalance(mint, holder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load share balance", err.Error())
		return
	}
	account, _ := equity.DeriveTokenAccountAddress(mint, holder)
	writeResult(w, req.ID, balanceResult{Address: encodeAddr(account), Balance: balance})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params addressParams
	if !singleParam(w, req, &params) {
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.AccountBalance(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load balance", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{Address: encodeAddr(addr), Balance: balance})
}

func (s *Server) handleDevFund(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if s.faucet == 0 {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "dev faucet disabled", nil)
		return
	}
	var params addressParams
	if !singleParam(w, req, &params) {
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	if err := s.node.FundAccount(addr, new(big.Int).SetUint64(s.faucet)); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to fund account", err.Error())
		return
	}
	balance, err := s.node.AccountBalance(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load balance", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{Address: encodeAddr(addr), Balance: balance})
}
