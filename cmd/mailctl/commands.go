package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mailrelay/mailrelay/internal/config"
	"github.com/mailrelay/mailrelay/internal/email"
	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/model"
	"github.com/mailrelay/mailrelay/internal/service"
	mailrelay "github.com/mailrelay/mailrelay/sdk/go"
)

type rootOptions struct {
	configFile string
	server     string
	timeout    time.Duration
}

type sendOptions struct {
	to       string
	template string
	data     map[string]string
	direct   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "mailctl",
		Short:         "Command line client for the mailrelay service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: search ./config.yaml, ./config, /etc/mailrelay)")
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "mailrelay server URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(newSendCmd(opts))
	rootCmd.AddCommand(newHealthCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))

	return rootCmd
}

func newSendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a templated email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			if opts.direct {
				return sendDirect(ctx, cmd, root, opts)
			}
			return sendViaServer(ctx, cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.to, "to", "", "recipient address")
	cmd.Flags().StringVar(&opts.template, "template", "", "provider template ID")
	cmd.Flags().StringToStringVar(&opts.data, "data", nil, "template variables as key=value pairs")
	cmd.Flags().BoolVar(&opts.direct, "direct", false, "call the provider from this process instead of the server")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func sendViaServer(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *sendOptions) error {
	client := mailrelay.NewClient(mailrelay.Config{BaseURL: root.server})

	resp, err := client.SendEmail(ctx, mailrelay.SendEmailRequest{
		To:           opts.to,
		TemplateID:   opts.template,
		TemplateData: opts.data,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}

func sendDirect(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *sendOptions) error {
	store, err := config.Load(root.configFile)
	if err != nil {
		return err
	}
	cfg := store.Current()
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, "console")

	svc := service.NewEmailService(store, log)
	err = svc.SendTemplateEmail(ctx, model.SendEmailRequest{
		To:           opts.to,
		TemplateID:   opts.template,
		TemplateData: opts.data,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), model.EmailSentMessage)
	return nil
}

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the server health report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			client := mailrelay.NewClient(mailrelay.Config{BaseURL: root.server})
			resp, err := client.Health(ctx)
			if resp != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\nVersion: %s\n", resp.Status, resp.Version)
				for name, state := range resp.Services {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", name, state)
				}
			}
			return err
		},
	}
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configFile)
			if err != nil {
				return err
			}

			if file := store.File(); file != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", file)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(store.Current().Redacted()); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the email provider configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configFile)
			if err != nil {
				return err
			}
			cfg := store.Current().Email

			if err := email.CheckConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "provider %q is configured, sending as %s <%s>\n",
				cfg.Provider, cfg.From.Name, cfg.From.Address)
			return nil
		},
	}
}
