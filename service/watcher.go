package service

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fundchain/chain"
)

const (
	watchConfirmations = uint64(12)
	watchBatchSize     = uint64(200)
	watchPollInterval  = 3 * time.Second
)

// Transfer event signature: Transfer(address,address,uint256)
var transferEventSig = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// minimal ERC20 ABI for Transfer decoding
const erc20ABIJSON = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"from","type":"address"},{"indexed":true,"internalType":"address","name":"to","type":"address"},{"indexed":false,"internalType":"uint256","name":"value","type":"uint256"}],"name":"Transfer","type":"event"}]`

// TransferWatcher tails Transfer logs of the deployed fund tokens on the
// real network and feeds them to the audit sink. Secondary-market transfers
// happen outside this backend, so the cache would drift without it.
type TransferWatcher struct {
	client    *ethclient.Client
	erc       abi.ABI
	addresses []common.Address
	sink      EventSink
	next      uint64
}

func NewTransferWatcher(rpcURL string, tokens []string, sink EventSink) (*TransferWatcher, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	addrs := make([]common.Address, 0, len(tokens))
	for _, t := range tokens {
		if common.IsHexAddress(t) {
			addrs = append(addrs, common.HexToAddress(t))
		}
	}
	return &TransferWatcher{client: client, erc: parsed, addresses: addrs, sink: sink}, nil
}

// Run polls until the context is cancelled.
func (w *TransferWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.client.Close()
			return
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				log.Printf("transfer watcher: %v", err)
			}
		}
	}
}

func (w *TransferWatcher) poll(ctx context.Context) error {
	if len(w.addresses) == 0 {
		return nil
	}
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("head: %w", err)
	}
	if head < watchConfirmations {
		return nil
	}
	safe := head - watchConfirmations
	if w.next == 0 {
		w.next = safe // start at the tip, no historical backfill
		return nil
	}
	if w.next > safe {
		return nil
	}
	to := w.next + watchBatchSize
	if to > safe {
		to = safe
	}
	logs, err := w.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(w.next),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: w.addresses,
		Topics:    [][]common.Hash{{transferEventSig}},
	})
	if err != nil {
		return fmt.Errorf("filter logs %d-%d: %w", w.next, to, err)
	}
	for _, lg := range logs {
		if len(lg.Topics) != 3 {
			continue
		}
		var decoded struct {
			Value *big.Int
		}
		if err := w.erc.UnpackIntoInterface(&decoded, "Transfer", lg.Data); err != nil {
			log.Printf("transfer watcher: decode %s: %v", lg.TxHash.Hex(), err)
			continue
		}
		w.sink.RecordEvents(lg.TxHash.Hex(), lg.BlockNumber, []chain.Event{{
			Name: "Transfer",
			Args: map[string]any{
				"token": lg.Address.Hex(),
				"from":  common.HexToAddress(lg.Topics[1].Hex()).Hex(),
				"to":    common.HexToAddress(lg.Topics[2].Hex()).Hex(),
				"value": FormatUnits(decoded.Value),
			},
		}})
	}
	w.next = to + 1
	return nil
}
