package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/deliverykit/delivery"
	"github.com/kbukum/deliverykit/orchestrator"
	"github.com/kbukum/deliverykit/params"
	"github.com/kbukum/deliverykit/util"
	"github.com/kbukum/deliverykit/version"
)

// requestFlags are shared by commands that send content unit parameters.
type requestFlags struct {
	parameters map[string]string
	profile    map[string]string
	orderID    string
	orderTotal float64
	productID  string
	category   string
	fallback   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringToStringVar(&f.parameters, "param", nil, "Unit parameter key=value (repeatable)")
	cmd.Flags().StringToStringVar(&f.profile, "profile", nil, "Profile parameter key=value (repeatable)")
	cmd.Flags().StringVar(&f.orderID, "order-id", "", "Order id")
	cmd.Flags().Float64Var(&f.orderTotal, "order-total", 0, "Order total")
	cmd.Flags().StringVar(&f.productID, "product-id", "", "Product id")
	cmd.Flags().StringVar(&f.category, "category-id", "", "Product category id")
}

func (f *requestFlags) global() *params.Parameters {
	p := &params.Parameters{
		Parameters:        f.parameters,
		ProfileParameters: f.profile,
	}
	if f.orderID != "" || f.orderTotal != 0 {
		p.Order = &params.Order{ID: f.orderID, Total: f.orderTotal}
	}
	if f.productID != "" {
		p.Product = &params.Product{ID: f.productID, CategoryID: f.category}
	}
	if p.IsEmpty() {
		return nil
	}
	return p
}

// units builds one unit per distinct name, in argument order.
func (f *requestFlags) units(names []string) []delivery.Unit {
	names = util.Unique(names)
	units := make([]delivery.Unit, len(names))
	for i, name := range names {
		units[i] = delivery.Unit{Name: name, DefaultContent: f.fallback}
	}
	return units
}

// resultOutput is the JSON printed for a completed call.
type resultOutput struct {
	Intent  string            `json:"intent"`
	OK      bool              `json:"ok"`
	Sent    bool              `json:"sent"`
	Status  int               `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
	Answers []delivery.Answer `json:"answers,omitempty"`
}

func report(cmd *cobra.Command, res orchestrator.Result) error {
	out := resultOutput{
		Intent:  res.Intent.String(),
		OK:      res.OK(),
		Sent:    res.Sent,
		Status:  res.Status,
		Error:   res.Message(),
		Answers: res.Answers,
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	return nil
}

func newPrefetchCmd(root *rootFlags) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "prefetch MBOX...",
		Short: "Prefetch content units into the local cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				res, err := awaitResult(ctx, a.orch.Prefetch(ctx, f.units(args), f.global()))
				if err != nil {
					return err
				}
				return report(cmd, res)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newLoadCmd(root *rootFlags) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "load MBOX...",
		Short: "Load content units, answering prefetched ones from cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				res, err := awaitResult(ctx, a.orch.Load(ctx, f.units(args), f.global()))
				if err != nil {
					return err
				}
				return report(cmd, res)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.fallback, "default", "", "Content used for units the endpoint does not answer")
	return cmd
}

func newDisplayCmd(root *rootFlags) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "display MBOX...",
		Short: "Report that cached content units were displayed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				res, err := awaitResult(ctx, a.orch.Display(ctx, util.Unique(args), f.global()))
				if err != nil {
					return err
				}
				return report(cmd, res)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newClickCmd(root *rootFlags) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "click MBOX",
		Short: "Report a click on a cached content unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				res, err := awaitResult(ctx, a.orch.Click(ctx, args[0], f.global()))
				if err != nil {
					return err
				}
				return report(cmd, res)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newResetCmd(root *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the visitor identity, session and prefetched content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				a.orch.ResetExperience(ctx)
				if all {
					a.orch.Cache().ClearAll()
				}
				fmt.Fprintln(cmd.OutOrStdout(), "visitor reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also drop content cached by load")
	return cmd
}

type sessionOutput struct {
	ClientCode    string `json:"client_code"`
	TntID         string `json:"tnt_id,omitempty"`
	ThirdPartyID  string `json:"third_party_id,omitempty"`
	SessionID     string `json:"session_id"`
	EdgeHost      string `json:"edge_host,omitempty"`
	Privacy       string `json:"privacy"`
	Prefetched    int    `json:"prefetched"`
	Loaded        int    `json:"loaded"`
	PendingEvents int    `json:"pending_notifications"`
}

func newSessionCmd(root *rootFlags) *cobra.Command {
	var thirdPartyID string
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the visitor profile, optionally setting the third-party id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("third-party-id") {
					a.orch.SetThirdPartyID(ctx, thirdPartyID)
				}
				cfg := a.orch.Config()
				prefetched, loaded := a.orch.Cache().Stats()
				return writeJSON(cmd.OutOrStdout(), sessionOutput{
					ClientCode:    cfg.ClientCode,
					TntID:         a.orch.TntID(),
					ThirdPartyID:  a.orch.ThirdPartyID(),
					SessionID:     a.orch.SessionID(ctx),
					EdgeHost:      a.orch.EdgeHost(ctx),
					Privacy:       cfg.PrivacyStatus,
					Prefetched:    prefetched,
					Loaded:        loaded,
					PendingEvents: a.orch.PendingNotifications(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&thirdPartyID, "third-party-id", "", "Set (or clear with \"\") the third-party visitor id")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
