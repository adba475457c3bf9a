package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"localshare/crypto"
)

var rpcEndpoint = defaultRPCEndpoint()
var rpcAuthToken = os.Getenv("LSH_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	args = args[1:]
	switch command {
	case "generate-key":
		generateKey()
	case "addr":
		requireArgs(args, 1, "addr <key-file>")
		showAddress(args[0])
	case "balance":
		requireArgs(args, 1, "balance <address>")
		getBalance(args[0])
	case "fund":
		requireArgs(args, 1, "fund <address>")
		fund(args[0])
	case "init-config":
		requireArgs(args, 2, "init-config <admin> <payment-mint>")
		initConfig(args[0], args[1])
	case "register":
		requireArgs(args, 2, "register <key-file> <name>")
		registerBusiness(args[0], strings.Join(args[1:], " "))
	case "configure":
		requireArgs(args, 3, "configure <key-file> <total-shares> <price-per-share> [treasury]")
		treasury := ""
		if len(args) > 3 {
			treasury = args[3]
		}
		configureOffering(args[0], parseUint(args[1], "total-shares"), parseUint(args[2], "price-per-share"), treasury)
	case "init-mint":
		requireArgs(args, 1, "init-mint <key-file>")
		initShareMint(args[0])
	case "list":
		requireArgs(args, 1, "list <key-file>")
		listBusiness(args[0])
	case "buy":
		requireArgs(args, 3, "buy <key-file> <business> <amount>")
		buyShares(args[0], args[1], parseUint(args[2], "amount"))
	case "create-offering":
		requireArgs(args, 3, "create-offering <key-file> <price-per-share> <initial-shares>")
		createOffering(args[0], parseUint(args[1], "price-per-share"), parseUint(args[2], "initial-shares"))
	case "buy-offering":
		requireArgs(args, 3, "buy-offering <key-file> <offering> <amount>")
		buyFromOffering(args[0], args[1], parseUint(args[2], "amount"))
	case "business":
		requireArgs(args, 1, "business <address>")
		getBusiness(map[string]string{"address": args[0]})
	case "business-of":
		requireArgs(args, 1, "business-of <owner>")
		getBusiness(map[string]string{"owner": args[0]})
	case "offering":
		requireArgs(args, 1, "offering <address>")
		query("equity_getOffering", map[string]string{"address": args[0]})
	case "vault":
		requireArgs(args, 1, "vault <business>")
		query("equity_getVaultBalance", map[string]string{"business": args[0]})
	case "shares":
		requireArgs(args, 2, "shares <business> <holder>")
		query("equity_getShareBalance", map[string]string{"business": args[0], "holder": args[1]})
	case "config":
		query("equity_getConfig", nil)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: localshare-cli [--rpc <url>] <command> [args]

Commands:
  generate-key                                         Create wallet.key and print its address
  addr <key-file>                                      Print the address for a key file
  balance <address>                                    Show native balance
  fund <address>                                       Request dev faucet funds
  init-config <admin> <payment-mint>                   Initialise the protocol config
  register <key-file> <name>                           Register or rename your business
  configure <key-file> <shares> <price> [treasury]     Set offering economics
  init-mint <key-file>                                 Create the share mint and vault
  list <key-file>                                      List your business on the marketplace
  buy <key-file> <business> <amount>                   Buy shares from a listed business
  create-offering <key-file> <price> <shares>          Escrow shares into an offering
  buy-offering <key-file> <offering> <amount>          Buy shares from an offering
  business <address> | business-of <owner>             Show a business record
  offering <address>                                   Show an offering record
  vault <business>                                     Show unsold vault shares
  shares <business> <holder>                           Show a holder's share balance
  config                                               Show the protocol config`)
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Printf("Usage: localshare-cli %s\n", usage)
		os.Exit(1)
	}
}

func parseUint(value, name string) uint64 {
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		fmt.Printf("Error: invalid %s: %s\n", name, value)
		os.Exit(1)
	}
	return parsed
}

func generateKey() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}

	fileName := "wallet.key"
	if err := os.WriteFile(fileName, key.Bytes(), 0o600); err != nil {
		panic(fmt.Sprintf("Failed to save key to %s: %v", fileName, err))
	}

	fmt.Printf("Generated new key and saved to %s\n", fileName)
	fmt.Printf("Your public address is: %s\n", key.PubKey().Address().String())
}

func showAddress(keyFile string) {
	key, err := loadPrivateKey(keyFile)
	if err != nil {
		fmt.Printf("Error loading key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(key.PubKey().Address().String())
}

func loadPrivateKey(path string) (*crypto.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key file %s not found. run localshare-cli generate-key first", path)
		}
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	if len(keyBytes) == 0 {
		return nil, fmt.Errorf("key file %s is empty", path)
	}
	return crypto.PrivateKeyFromBytes(keyBytes)
}

func callerAddress(keyFile string) string {
	key, err := loadPrivateKey(keyFile)
	if err != nil {
		fmt.Printf("Error loading key: %v\n", err)
		os.Exit(1)
	}
	return key.PubKey().Address().String()
}

func callRPC(method string, param interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if param != nil {
		payload["params"] = []interface{}{param}
	} else {
		payload["params"] = []interface{}{}
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requireAuth && strings.TrimSpace(rpcAuthToken) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rpcAuthToken))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", rpcEndpoint, err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response from node")
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("error from node: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func printResult(result json.RawMessage) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}

func run(method string, param interface{}, requireAuth bool) {
	result, err := callRPC(method, param, requireAuth)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	printResult(result)
}

func query(method string, param interface{}) {
	run(method, param, false)
}

func getBalance(addr string) {
	query("lsh_getBalance", map[string]string{"address": addr})
}

func fund(addr string) {
	run("dev_fund", map[string]string{"address": addr}, false)
}

func initConfig(admin, paymentMint string) {
	run("equity_initConfig", map[string]string{"admin": admin, "paymentMint": paymentMint}, true)
}

func registerBusiness(keyFile, name string) {
	run("equity_registerBusiness", map[string]string{"caller": callerAddress(keyFile), "name": name}, true)
}

func configureOffering(keyFile string, totalShares, pricePerShare uint64, treasury string) {
	params := map[string]interface{}{
		"caller":        callerAddress(keyFile),
		"totalShares":   totalShares,
		"pricePerShare": pricePerShare,
	}
	if strings.TrimSpace(treasury) != "" {
		params["treasury"] = treasury
	}
	run("equity_configureOffering", params, true)
}

func initShareMint(keyFile string) {
	run("equity_initShareMint", map[string]string{"caller": callerAddress(keyFile)}, true)
}

func listBusiness(keyFile string) {
	run("equity_listBusiness", map[string]string{"caller": callerAddress(keyFile)}, true)
}

func buyShares(keyFile, business string, amount uint64) {
	run("equity_buyShares", map[string]interface{}{
		"caller":   callerAddress(keyFile),
		"business": business,
		"amount":   amount,
	}, true)
}

func createOffering(keyFile string, pricePerShare, initialShares uint64) {
	run("equity_createOffering", map[string]interface{}{
		"caller":        callerAddress(keyFile),
		"pricePerShare": pricePerShare,
		"initialShares": initialShares,
	}, true)
}

func buyFromOffering(keyFile, offering string, amount uint64) {
	run("equity_buySharesFromOffering", map[string]interface{}{
		"caller":   callerAddress(keyFile),
		"offering": offering,
		"amount":   amount,
	}, true)
}

func getBusiness(param map[string]string) {
	query("equity_getBusiness", param)
}
