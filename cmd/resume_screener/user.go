package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/server"
	"github.com/jonathan/resume-screener/internal/types"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API accounts",
	}

	var (
		username      string
		passwordStdin bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long:  "Create an account for the REST API. The password is prompted for unless --password-stdin is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUserAdd(cmd, username, passwordStdin)
		},
	}
	add.Flags().StringVarP(&username, "username", "u", "", "Account username")
	add.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = add.MarkFlagRequired("username")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) runUserAdd(cmd *cobra.Command, username string, passwordStdin bool) error {
	var password string
	var err error
	if passwordStdin {
		password, err = readPassword(cmd.InOrStdin())
	} else {
		password, err = promptPassword()
	}
	if err != nil {
		return err
	}

	req := types.CredentialsRequest{Username: strings.TrimSpace(username), Password: password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	pw, err := config.NewPasswordConfig(a.cfg.Auth)
	if err != nil {
		return err
	}

	user, err := server.NewUserService(store, pw).Register(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	a.log.Info("user created", zap.String("user_id", user.ID.String()))
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword() (string, error) {
	validate := func(input string) error {
		if len(input) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		return nil
	}

	password, err := (&promptui.Prompt{Label: "Password", Mask: '*', Validate: validate}).Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}

	confirm, err := (&promptui.Prompt{Label: "Confirm password", Mask: '*'}).Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	if confirm != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
