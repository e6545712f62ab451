package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"buildlens/internal/redact"
	"buildlens/pkg/cmdutil"
)

// devopsResourceID is the well-known Azure AD resource for Azure DevOps,
// used when requesting an access token from the az CLI.
const devopsResourceID = "499b84ac-1321-427f-aa17-267ca6975798"

// CLI wraps the Azure provider command-line tool. The command can be
// overridden in configuration (e.g. "az" run through a wrapper script);
// the configured string is shell-split once at construction.
type CLI struct {
	command []string
	timeout time.Duration
}

// NewCLI creates a CLI wrapper from a configured command string.
// An empty string defaults to "az".
func NewCLI(commandString string) (*CLI, error) {
	if strings.TrimSpace(commandString) == "" {
		commandString = "az"
	}
	parts, err := cmdutil.ParseCommandString(commandString)
	if err != nil {
		return nil, err
	}
	return &CLI{command: parts, timeout: 60 * time.Second}, nil
}

// Account is the active az CLI session.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	State    string `json:"state"`
	User     struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// Subscription is one subscription visible to the signed-in account.
type Subscription struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	IsDefault bool   `json:"isDefault"`
}

type accessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresOn   string `json:"expiresOn"`
}

func (c *CLI) run(ctx context.Context, out interface{}, args ...string) error {
	cmd := append(append([]string{}, c.command...), args...)
	cmd = append(cmd, "-o", "json")
	if err := cmdutil.RunJSON(ctx, cmdutil.ExecOptions{Timeout: c.timeout}, cmd, out); err != nil {
		// CLI error output can echo the request, token included; scrub it
		// before the error reaches a log file or the terminal.
		return &TransportError{
			Op:   "run " + cmdutil.FormatCommand(c.command) + " " + strings.Join(args, " "),
			Hint: "make sure the Azure CLI is installed and you are signed in with 'az login'",
			Err:  fmt.Errorf("%s", redact.Secrets(err.Error())),
		}
	}
	return nil
}

// Account returns the active CLI session, or a TransportError when nobody
// is signed in.
func (c *CLI) Account(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.run(ctx, &account, "account", "show"); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListSubscriptions returns all subscriptions visible to the session.
func (c *CLI) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.run(ctx, &subs, "account", "list"); err != nil {
		return nil, err
	}
	return subs, nil
}

// AccessToken acquires a bearer token scoped to Azure DevOps.
func (c *CLI) AccessToken(ctx context.Context) (string, error) {
	var token accessToken
	if err := c.run(ctx, &token, "account", "get-access-token", "--resource", devopsResourceID); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
