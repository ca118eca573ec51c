package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tonwire/tonwire/internal/liteapi"
	"github.com/tonwire/tonwire/internal/liteclient"
)

// queryCommands builds one subcommand per lite-server request.
func queryCommands() []*cobra.Command {
	var waitSeqno uint32
	var waitTimeout time.Duration

	run := func(fn func(ctx context.Context, client *liteclient.Client) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *liteclient.Client) error {
				if waitSeqno != 0 {
					client.WaitMasterchainSeqno(waitSeqno, waitTimeout)
				}
				return fn(ctx, client)
			})
		}
	}

	getTime := &cobra.Command{
		Use:   "get-time",
		Short: "Query the server's current time",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *liteclient.Client) error {
			result, err := client.GetTime(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("server time: %d (%s)\n", result.Now, time.Unix(int64(result.Now), 0).UTC())
			return nil
		}),
	}

	getVersion := &cobra.Command{
		Use:   "get-version",
		Short: "Query the server's version and capabilities",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *liteclient.Client) error {
			result, err := client.GetVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("version: 0x%x\ncapabilities: 0x%x\nnow: %d\n", result.Version, result.Capabilities, result.Now)
			return nil
		}),
	}

	getMasterchainInfo := &cobra.Command{
		Use:   "get-masterchain-info",
		Short: "Query the latest masterchain block",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *liteclient.Client) error {
			result, err := client.GetMasterchainInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("last: %s\nstate root hash: %s\ninit workchain: %d\n",
				result.Last, result.StateRootHash, result.Init.Workchain)
			return nil
		}),
	}

	var mcExtMode uint32
	getMasterchainInfoExt := &cobra.Command{
		Use:   "get-masterchain-info-ext",
		Short: "Query extended masterchain info",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *liteclient.Client) error {
			result, err := client.GetMasterchainInfoExt(ctx, mcExtMode)
			if err != nil {
				return err
			}
			fmt.Printf("last: %s\nversion: 0x%x\ncapabilities: 0x%x\nlast utime: %d\nnow: %d\n",
				result.Last, result.Version, result.Capabilities, result.LastUtime, result.Now)
			return nil
		}),
	}
	getMasterchainInfoExt.Flags().Uint32Var(&mcExtMode, "mode", 0, "request mode bits")

	getBlock := &cobra.Command{
		Use:   "get-block <block_id_ext>",
		Short: "Fetch a full block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetBlock(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\ndata: %s\n", result.Id, humanize.Bytes(uint64(len(result.Data))))
				fmt.Println(hex.EncodeToString(result.Data))
				return nil
			})(cmd, args)
		},
	}

	getState := &cobra.Command{
		Use:   "get-state <block_id_ext>",
		Short: "Fetch a full shard state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetState(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("state of %s: %s\nroot hash: %s\nfile hash: %s\n",
					result.Id, humanize.Bytes(uint64(len(result.Data))), result.RootHash, result.FileHash)
				return nil
			})(cmd, args)
		},
	}

	var headerMode uint32
	getBlockHeader := &cobra.Command{
		Use:   "get-block-header <block_id_ext>",
		Short: "Fetch a block header proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetBlockHeader(ctx, id, headerMode)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\nheader proof: %s\n", result.Id, humanize.Bytes(uint64(len(result.HeaderProof))))
				return nil
			})(cmd, args)
		},
	}
	getBlockHeader.Flags().Uint32Var(&headerMode, "mode", 0, "request mode bits")

	sendMessage := &cobra.Command{
		Use:   "send-message <file>",
		Short: "Send an external message read from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.SendMessage(ctx, body)
				if err != nil {
					return err
				}
				fmt.Printf("status: %d\n", result.Status)
				return nil
			})(cmd, args)
		},
	}

	getAccountState := &cobra.Command{
		Use:   "get-account-state <block_id_ext> <account>",
		Short: "Fetch an account state with proofs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			account, err := parseAccountId(args[1])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetAccountState(ctx, id, account)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\nshard block: %s\nstate: %s\n",
					result.Id, result.Shardblk, humanize.Bytes(uint64(len(result.State))))
				return nil
			})(cmd, args)
		},
	}

	var smcMode uint32
	var smcMethodId int64
	var smcParamsHex string
	runSmcMethod := &cobra.Command{
		Use:   "run-smc-method <block_id_ext> <account>",
		Short: "Execute a get-method against an account state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			account, err := parseAccountId(args[1])
			if err != nil {
				return err
			}
			params, err := hex.DecodeString(smcParamsHex)
			if err != nil {
				return fmt.Errorf("can't parse params: %w", err)
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.RunSmcMethod(ctx, liteapi.RunSmcMethod{
					Mode:     smcMode,
					Id:       id,
					Account:  account,
					MethodId: smcMethodId,
					Params:   params,
				})
				if err != nil {
					return err
				}
				fmt.Printf("exit code: %d\n", result.ExitCode)
				if result.Result != nil {
					fmt.Printf("result: %s\n", hex.EncodeToString(result.Result))
				}
				return nil
			})(cmd, args)
		},
	}
	runSmcMethod.Flags().Uint32Var(&smcMode, "mode", 4, "request mode bits")
	runSmcMethod.Flags().Int64Var(&smcMethodId, "method-id", 0, "method id to execute")
	runSmcMethod.Flags().StringVar(&smcParamsHex, "params", "", "hex-encoded serialized method parameters")

	var shardWorkchain int32
	var shardShard uint64
	var shardExact bool
	getShardInfo := &cobra.Command{
		Use:   "get-shard-info <block_id_ext>",
		Short: "Find the shard block covering a workchain/shard pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetShardInfo(ctx, id, shardWorkchain, shardShard, shardExact)
				if err != nil {
					return err
				}
				fmt.Printf("shard block: %s\n", result.Shardblk)
				return nil
			})(cmd, args)
		},
	}
	getShardInfo.Flags().Int32Var(&shardWorkchain, "workchain", 0, "target workchain")
	getShardInfo.Flags().Uint64Var(&shardShard, "shard", 0x8000000000000000, "target shard")
	getShardInfo.Flags().BoolVar(&shardExact, "exact", false, "require an exact shard match")

	getAllShardsInfo := &cobra.Command{
		Use:   "get-all-shards-info <block_id_ext>",
		Short: "Fetch the full shard configuration at a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetAllShardsInfo(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\ndata: %s\n", result.Id, humanize.Bytes(uint64(len(result.Data))))
				return nil
			})(cmd, args)
		},
	}

	var oneTxLt uint64
	getOneTransaction := &cobra.Command{
		Use:   "get-one-transaction <block_id_ext> <account>",
		Short: "Fetch a single transaction from a known block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			account, err := parseAccountId(args[1])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetOneTransaction(ctx, id, account, oneTxLt)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\ntransaction: %s\n", result.Id, humanize.Bytes(uint64(len(result.Transaction))))
				return nil
			})(cmd, args)
		},
	}
	getOneTransaction.Flags().Uint64Var(&oneTxLt, "lt", 0, "logical time of the transaction")

	var txCount uint32
	var txLt uint64
	var txHash string
	getTransactions := &cobra.Command{
		Use:   "get-transactions <account>",
		Short: "Walk an account's transaction history backwards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseAccountId(args[0])
			if err != nil {
				return err
			}
			hash, err := liteapi.ParseInt256(txHash)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetTransactions(ctx, txCount, account, txLt, hash)
				if err != nil {
					return err
				}
				for _, id := range result.Ids {
					fmt.Println(id)
				}
				fmt.Printf("transactions: %s\n", humanize.Bytes(uint64(len(result.Transactions))))
				return nil
			})(cmd, args)
		},
	}
	getTransactions.Flags().Uint32Var(&txCount, "count", 10, "number of transactions to fetch")
	getTransactions.Flags().Uint64Var(&txLt, "lt", 0, "logical time to start from")
	getTransactions.Flags().StringVar(&txHash, "hash", "", "transaction hash to start from")

	var lookupLt uint64
	var lookupUtime uint32
	lookupBlock := &cobra.Command{
		Use:   "lookup-block <block_id>",
		Short: "Find a block by seqno, logical time or unix time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockId(args[0])
			if err != nil {
				return err
			}
			var lt *uint64
			var utime *uint32
			if cmd.Flags().Changed("lt") {
				lt = &lookupLt
			}
			if cmd.Flags().Changed("utime") {
				utime = &lookupUtime
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.LookupBlock(ctx, id, lt, utime)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\n", result.Id)
				return nil
			})(cmd, args)
		},
	}
	lookupBlock.Flags().Uint64Var(&lookupLt, "lt", 0, "lookup by logical time")
	lookupBlock.Flags().Uint32Var(&lookupUtime, "utime", 0, "lookup by unix time")

	var listCount uint32
	var listAfter string
	var listReverse, listWantProof bool
	listBlockTransactions := &cobra.Command{
		Use:   "list-block-transactions <block_id_ext>",
		Short: "Enumerate transaction ids within a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			req := liteapi.ListBlockTransactions{
				Id:           id,
				Count:        listCount,
				ReverseOrder: listReverse,
				WantProof:    listWantProof,
			}
			if listAfter != "" {
				account, err := parseAccountId(listAfter)
				if err != nil {
					return err
				}
				req.After = &liteapi.TransactionId3{Account: account.Id}
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.ListBlockTransactions(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s (incomplete=%v)\n", result.Id, result.Incomplete)
				for _, tx := range result.Ids {
					if tx.Account != nil && tx.Lt != nil {
						fmt.Printf("  account=%s lt=%d\n", tx.Account, *tx.Lt)
					}
				}
				return nil
			})(cmd, args)
		},
	}
	listBlockTransactions.Flags().Uint32Var(&listCount, "count", 40, "number of transaction ids to list")
	listBlockTransactions.Flags().StringVar(&listAfter, "after", "", "resume after this account")
	listBlockTransactions.Flags().BoolVar(&listReverse, "reverse", false, "list in reverse order")
	listBlockTransactions.Flags().BoolVar(&listWantProof, "want-proof", false, "request inclusion proofs")

	var proofTarget string
	getBlockProof := &cobra.Command{
		Use:   "get-block-proof <known_block_id_ext>",
		Short: "Fetch a proof chain from a known block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			known, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			var target *liteapi.BlockIdExt
			if proofTarget != "" {
				parsed, err := parseBlockIdExt(proofTarget)
				if err != nil {
					return err
				}
				target = &parsed
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetBlockProof(ctx, known, target)
				if err != nil {
					return err
				}
				fmt.Printf("complete: %v\nfrom: %s\nto: %s\nsteps: %d\n",
					result.Complete, result.From, result.To, len(result.Steps))
				return nil
			})(cmd, args)
		},
	}
	getBlockProof.Flags().StringVar(&proofTarget, "target", "", "target block id")

	var configMode uint32
	getConfigAll := &cobra.Command{
		Use:   "get-config-all <block_id_ext>",
		Short: "Fetch the complete configuration at a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetConfigAll(ctx, configMode, id)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\nconfig proof: %s\n", result.Id, humanize.Bytes(uint64(len(result.ConfigProof))))
				return nil
			})(cmd, args)
		},
	}
	getConfigAll.Flags().Uint32Var(&configMode, "mode", 0, "request mode bits")

	var paramsMode uint32
	var paramList []int32
	getConfigParams := &cobra.Command{
		Use:   "get-config-params <block_id_ext>",
		Short: "Fetch specific configuration parameters at a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetConfigParams(ctx, paramsMode, id, paramList)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\nconfig proof: %s\n", result.Id, humanize.Bytes(uint64(len(result.ConfigProof))))
				return nil
			})(cmd, args)
		},
	}
	getConfigParams.Flags().Uint32Var(&paramsMode, "mode", 0, "request mode bits")
	getConfigParams.Flags().Int32SliceVar(&paramList, "param", nil, "parameter index (repeatable)")

	var statsLimit uint32
	var statsStartAfter string
	var statsModifiedAfter uint32
	getValidatorStats := &cobra.Command{
		Use:   "get-validator-stats <block_id_ext>",
		Short: "Page through validator statistics at a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			req := liteapi.GetValidatorStats{Id: id, Limit: statsLimit}
			if statsStartAfter != "" {
				start, err := liteapi.ParseInt256(statsStartAfter)
				if err != nil {
					return err
				}
				req.StartAfter = &start
			}
			if cmd.Flags().Changed("modified-after") {
				req.ModifiedAfter = &statsModifiedAfter
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetValidatorStats(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\ncount: %d complete: %v\n", result.Id, result.Count, result.Complete)
				return nil
			})(cmd, args)
		},
	}
	getValidatorStats.Flags().Uint32Var(&statsLimit, "limit", 10, "maximum entries to return")
	getValidatorStats.Flags().StringVar(&statsStartAfter, "start-after", "", "resume after this validator")
	getValidatorStats.Flags().Uint32Var(&statsModifiedAfter, "modified-after", 0, "only entries modified after this unix time")

	getLibraries := &cobra.Command{
		Use:   "get-libraries <hash>...",
		Short: "Fetch library cells by hash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashes := make([]liteapi.Int256, 0, len(args))
			for _, arg := range args {
				h, err := liteapi.ParseInt256(arg)
				if err != nil {
					return err
				}
				hashes = append(hashes, h)
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetLibraries(ctx, hashes)
				if err != nil {
					return err
				}
				for _, entry := range result.Result {
					fmt.Printf("%s: %s\n", entry.Hash, humanize.Bytes(uint64(len(entry.Data))))
				}
				return nil
			})(cmd, args)
		},
	}

	var libProofMode uint32
	getLibrariesWithProof := &cobra.Command{
		Use:   "get-libraries-with-proof <block_id_ext> <hash>...",
		Short: "Fetch library cells with membership proofs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlockIdExt(args[0])
			if err != nil {
				return err
			}
			hashes := make([]liteapi.Int256, 0, len(args)-1)
			for _, arg := range args[1:] {
				h, err := liteapi.ParseInt256(arg)
				if err != nil {
					return err
				}
				hashes = append(hashes, h)
			}
			return run(func(ctx context.Context, client *liteclient.Client) error {
				result, err := client.GetLibrariesWithProof(ctx, liteapi.GetLibrariesWithProof{
					Id:          id,
					Mode:        libProofMode,
					LibraryList: hashes,
				})
				if err != nil {
					return err
				}
				fmt.Printf("block: %s\n", result.Id)
				for _, entry := range result.Result {
					fmt.Printf("%s: %s\n", entry.Hash, humanize.Bytes(uint64(len(entry.Data))))
				}
				return nil
			})(cmd, args)
		},
	}
	getLibrariesWithProof.Flags().Uint32Var(&libProofMode, "mode", 0, "request mode bits")

	cmds := []*cobra.Command{
		getTime, getVersion, getMasterchainInfo, getMasterchainInfoExt,
		getBlock, getState, getBlockHeader, sendMessage, getAccountState,
		runSmcMethod, getShardInfo, getAllShardsInfo, getOneTransaction,
		getTransactions, lookupBlock, listBlockTransactions, getBlockProof,
		getConfigAll, getConfigParams, getValidatorStats, getLibraries,
		getLibrariesWithProof,
	}
	for _, cmd := range cmds {
		cmd.Flags().Uint32Var(&waitSeqno, "wait-seqno", 0, "attach waitMasterchainSeqno to the request")
		cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 10*time.Second, "server-side wait budget for --wait-seqno")
	}
	return cmds
}
