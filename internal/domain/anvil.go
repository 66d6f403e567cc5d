package domain

// AnvilInstance represents a local anvil node forking a remote chain
type AnvilInstance struct {
	Name            string `json:"name"`
	Port            string `json:"port"`
	ChainID         string `json:"chainId,omitempty"`
	ForkURL         string `json:"forkUrl,omitempty"`
	ForkBlockNumber uint64 `json:"forkBlockNumber,omitempty"`
	PidFile         string `json:"pidFile"`
	LogFile         string `json:"logFile"`
	// URL attaches to an already running node instead of the local port
	URL string `json:"url,omitempty"`
}

// RPCURL returns the JSON-RPC endpoint of the instance
func (a *AnvilInstance) RPCURL() string {
	if a.URL != "" {
		return a.URL
	}
	return "http://127.0.0.1:" + a.Port
}

// AnvilStatus represents the status of an anvil instance
type AnvilStatus struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid,omitempty"`
	RPCURL      string `json:"rpcUrl,omitempty"`
	LogFile     string `json:"logFile"`
	RPCHealthy  bool   `json:"rpcHealthy"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Error       string `json:"error,omitempty"`
}
