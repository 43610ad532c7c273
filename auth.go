package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sstent/stravasync/internal/config"
	"github.com/sstent/stravasync/internal/drive"
	"github.com/sstent/stravasync/internal/strava"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "One-time OAuth bootstrap for Strava and Google Drive",
	Long: `Performs the one-time authorization flows and saves the resulting
tokens so the export command can run unattended afterwards.`,
}

var authStravaCmd = &cobra.Command{
	Use:   "strava",
	Short: "Authorize access to the Strava API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		tokens := strava.NewTokenProvider(cfg, logger)

		fmt.Println("--- Strava Authentication ---")
		fmt.Println("1. Go to this URL in your browser:")
		fmt.Printf("\n   %s\n\n", tokens.AuthorizeURL())
		fmt.Println("2. Authorize the application; you will be redirected to a URL containing a 'code' parameter.")
		fmt.Println("3. Copy the value of 'code' and paste it below.")

		code, err := readLine(cmd, "\nEnter the authorization code: ")
		if err != nil {
			return err
		}

		if err := tokens.ExchangeCode(cmd.Context(), code); err != nil {
			return err
		}

		fmt.Printf("\nSuccess! Token data saved to %s\n", cfg.StravaTokenPath)
		fmt.Println("You can now run `stravasync export`.")
		return nil
	},
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize access to Google Drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		url, oauthCfg, err := drive.AuthCodeURL(cfg.GoogleCredentialsPath)
		if err != nil {
			return err
		}

		fmt.Println("--- Google Drive Authentication ---")
		fmt.Println("1. Go to this URL in your browser:")
		fmt.Printf("\n   %s\n\n", url)
		fmt.Println("2. Authorize the application and copy the code you are given.")

		code, err := readLine(cmd, "\nEnter the authorization code: ")
		if err != nil {
			return err
		}

		if err := drive.SaveExchangedToken(cmd.Context(), oauthCfg, code, cfg.GoogleTokenPath); err != nil {
			return err
		}

		fmt.Printf("\nAuthentication successful. Token saved to %s\n", cfg.GoogleTokenPath)
		return nil
	},
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no authorization code entered")
	}
	return line, nil
}

func init() {
	authCmd.AddCommand(authStravaCmd)
	authCmd.AddCommand(authGoogleCmd)
	rootCmd.AddCommand(authCmd)
}
