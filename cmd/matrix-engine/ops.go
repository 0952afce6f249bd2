package main

import (
	"fmt"
	"net"

	"github.com/LavaJover/shvark-matrix-service/internal/client"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
)

var (
	serverAddr string

	confirmLegCmd = &cobra.Command{
		Use:   "confirm-leg [transaction-id]",
		Short: "Confirm a donation leg on behalf of its recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialServer()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.ConfirmDonationLeg(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "confirmed", args[0])
			return nil
		},
	}

	showMatrixCmd = &cobra.Command{
		Use:   "matrix [matrix-id]",
		Short: "Print a matrix with its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialServer()
			if err != nil {
				return err
			}
			defer c.Close()
			out, err := c.GetMatrix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b, err := protojson.MarshalOptions{Multiline: true}.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{confirmLegCmd, showMatrixCmd} {
		c.Flags().StringVar(&serverAddr, "addr", "", "DonationService address, defaults to grpc_server from config")
		rootCmd.AddCommand(c)
	}
}

func dialServer() (*client.MatrixClient, error) {
	addr := serverAddr
	if addr == "" {
		addr = net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	}
	return client.NewMatrixClient(addr)
}
