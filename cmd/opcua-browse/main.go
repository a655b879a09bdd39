// Command opcua-browse is a small interactive CLI exercising package
// client and package monitor end to end, outside the OTel collector
// receiver harness: connect, browse the address space, read a value, or
// subscribe to one and print data changes as they arrive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duchuan123/opc-ua-client/client"
	"github.com/duchuan123/opc-ua-client/id"
	"github.com/duchuan123/opc-ua-client/monitor"
	"github.com/duchuan123/opc-ua-client/ua"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var endpoint string
	var insecure bool

	root := &cobra.Command{
		Use:   "opcua-browse",
		Short: "Browse, read, and subscribe against an OPC UA server",
	}
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "opc.tcp://localhost:4840", "server endpoint URL")
	root.PersistentFlags().BoolVar(&insecure, "insecure", true, "use SecurityPolicy#None and anonymous auth")

	root.AddCommand(newBrowseCmd(&endpoint, &insecure))
	root.AddCommand(newReadCmd(&endpoint, &insecure))
	root.AddCommand(newSubscribeCmd(&endpoint, &insecure))
	return root
}

func connect(ctx context.Context, endpoint string, insecure bool) (*client.Client, error) {
	logger := zap.NewNop()
	opts := []client.Option{client.Logger(logger)}
	if !insecure {
		eps, err := client.GetEndpoints(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("get endpoints: %w", err)
		}
		best := selectMostSecure(eps)
		if best == nil {
			return nil, fmt.Errorf("no endpoints advertised at %s", endpoint)
		}
		opts = append(opts, client.SecurityFromEndpoint(best, ua.UserTokenTypeAnonymous))
	}

	c, err := client.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func selectMostSecure(eps []*ua.EndpointDescription) *ua.EndpointDescription {
	var best *ua.EndpointDescription
	for _, ep := range eps {
		if best == nil || ep.SecurityLevel > best.SecurityLevel {
			best = ep
		}
	}
	return best
}

func newBrowseCmd(endpoint *string, insecure *bool) *cobra.Command {
	var nodeIDStr string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the children of a node (defaults to the Objects folder)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			c, err := connect(ctx, *endpoint, *insecure)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			start := id.ObjectsFolder
			if nodeIDStr != "" {
				start, err = ua.ParseNodeID(nodeIDStr)
				if err != nil {
					return fmt.Errorf("parse --node: %w", err)
				}
			}

			results, err := c.Browse(ctx, []*ua.BrowseDescription{{
				NodeID:          start,
				BrowseDirection: ua.BrowseDirectionForward,
				ReferenceTypeID: id.HierarchicalReferences,
				IncludeSubtypes: true,
				NodeClassMask:   0,
				ResultMask:      0x3f,
			}})
			if err != nil {
				return err
			}
			for _, res := range results {
				if res.StatusCode.IsBad() {
					fmt.Printf("browse failed: %s\n", res.StatusCode)
					continue
				}
				for _, ref := range res.References {
					fmt.Printf("%-20s %s\n", ref.BrowseName.Name, ref.NodeID.NodeID)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeIDStr, "node", "", "NodeId to browse (defaults to the Objects folder)")
	return cmd
}

func newReadCmd(endpoint *string, insecure *bool) *cobra.Command {
	var nodeIDStr string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the Value attribute of a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nodeIDStr == "" {
				return fmt.Errorf("--node is required")
			}
			ctx, cancel := signalContext()
			defer cancel()

			c, err := connect(ctx, *endpoint, *insecure)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			nodeID, err := ua.ParseNodeID(nodeIDStr)
			if err != nil {
				return fmt.Errorf("parse --node: %w", err)
			}
			results, err := c.Read(ctx, []*ua.ReadValueID{{NodeID: nodeID, AttributeID: ua.AttributeIDValue}})
			if err != nil {
				return err
			}
			for _, dv := range results {
				if dv.Value == nil {
					fmt.Println("<no value>")
					continue
				}
				fmt.Println(dv.Value.Value())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeIDStr, "node", "", "NodeId to read (required)")
	return cmd
}

func newSubscribeCmd(endpoint *string, insecure *bool) *cobra.Command {
	var nodeIDStr string
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to a node's Value attribute and print data changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nodeIDStr == "" {
				return fmt.Errorf("--node is required")
			}
			ctx, cancel := signalContext()
			defer cancel()

			c, err := connect(ctx, *endpoint, *insecure)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			nodeID, err := ua.ParseNodeID(nodeIDStr)
			if err != nil {
				return fmt.Errorf("parse --node: %w", err)
			}

			mgr := monitor.NewManager(c, zap.NewNop())
			mgr.Start(ctx)
			defer mgr.Stop()

			subID, err := mgr.CreateSubscription(ctx, monitor.DefaultSubscriptionParameters())
			if err != nil {
				return err
			}

			observer := monitor.NewQueueObserver(16)
			if _, _, err := mgr.AddMonitoredItem(ctx, subID, monitor.MonitoredItemParameters{
				NodeID:           nodeID,
				AttributeID:      ua.AttributeIDValue,
				SamplingInterval: time.Second,
				QueueSize:        1,
				DiscardOldest:    true,
			}, observer); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-observer.Queue():
					if ev.Value != nil && ev.Value.Value != nil {
						fmt.Println(ev.Value.Value.Value())
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&nodeIDStr, "node", "", "NodeId to subscribe to (required)")
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel
}
