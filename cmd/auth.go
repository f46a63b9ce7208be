package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/server"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/urfave/cli/v3"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in to Spotify via the browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether a usable Spotify credential is stored",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the logged-in Spotify user",
				Action: r.AuthLogout,
			},
		},
	}
}

// AuthLogin runs the authorization code flow with a local callback server.
//
// The browser is sent to Spotify's consent page and the callback completes
// the code exchange. On success the user id is written back to the config
// file so later invocations resolve the stored credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	sess := auth.NewSession(shared.GenerateID())
	authURL, err := r.manager.InitiateLogin(sess)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	callbackHandler := server.NewCallbackHandler(r.manager, sess)
	router := server.NewBasicRouter()
	router.Handler(callbackHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callbackHandler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	r.config.Credentials.Spotify.UserID = result.Record.UserID
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warnf("failed to save config %v", err)
	}

	r.writePlain("✓ Logged in as %s\n", result.Record.UserID)
	return nil
}

// AuthStatus reports whether a stored credential can yield a valid access token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	userID := r.config.Credentials.Spotify.UserID
	if userID == "" {
		r.writePlain("✗ Not logged in\n")
		r.writePlain("Run 'moodify auth login' to connect your Spotify account\n")
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := r.manager.GetValidAccessToken(checkCtx, r.cliSession()); err != nil {
		r.writePlain("✗ Stored credential for %s is unusable: %v\n", userID, err)
		r.writePlain("Run 'moodify auth login' to reconnect\n")
		return nil
	}

	r.writePlain("✓ Logged in as %s\n", userID)
	return nil
}

// AuthLogout removes the user binding from the config file. The durable
// credential record is retained and readopted on the next login.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	userID := r.config.Credentials.Spotify.UserID
	if userID == "" {
		r.writePlain("Not logged in\n")
		return nil
	}

	r.config.Credentials.Spotify.UserID = ""
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlain("✓ Logged out %s\n", userID)
	return nil
}
