// Package command provides CLI command definitions for securesnap.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/swissmarley/secure-snap/internal/cli/connection"
	"github.com/swissmarley/secure-snap/internal/cli/output"
	"github.com/swissmarley/secure-snap/pkg/sealbox"
	"github.com/swissmarley/secure-snap/pkg/token"
)

const requestTimeout = 30 * time.Second

// createPayload is the request body for POST /create.
type createPayload struct {
	Ciphertext []byte `json:"ciphertext"`
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
	Expiry     int64  `json:"expiry"`
}

// messagePayload is the response body for GET /message/{id}.
type messagePayload struct {
	Ciphertext []byte `json:"ciphertext"`
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
}

// CreateCommand returns the create command.
func CreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Encrypt a message and upload it for one-time reading",
		ArgsUsage: "[MESSAGE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "passphrase",
				Aliases:  []string{"p"},
				Usage:    "Passphrase for encryption",
				EnvVars:  []string{"SECURESNAP_PASSPHRASE"},
				Required: true,
			},
			&cli.DurationFlag{
				Name:    "expiry",
				Aliases: []string{"e"},
				Value:   24 * time.Hour,
				Usage:   "Time until the unread message is destroyed (e.g., 1h, 7d max)",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the message from a file, or - for stdin",
			},
		},
		Action: messageCreate,
	}
}

// ReadCommand returns the read command.
func ReadCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Fetch and decrypt a message, destroying it",
		ArgsUsage: "MESSAGE_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "passphrase",
				Aliases:  []string{"p"},
				Usage:    "Passphrase for decryption",
				EnvVars:  []string{"SECURESNAP_PASSPHRASE"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "verify",
				Usage: "Expected payload fingerprint from the sender",
			},
		},
		Action: messageRead,
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Destroy a message without reading it",
		ArgsUsage: "MESSAGE_ID",
		Action:    messageDelete,
	}
}

func messageCreate(c *cli.Context) error {
	plaintext, err := readPlaintext(c)
	if err != nil {
		return err
	}
	if len(plaintext) == 0 {
		return fmt.Errorf("message is empty")
	}

	box, err := sealbox.Seal(plaintext, c.String("passphrase"))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/create", createPayload{
		Ciphertext: box.Ciphertext,
		Salt:       box.Salt,
		IV:         box.IV,
		Expiry:     int64(c.Duration("expiry").Seconds()),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID        string `json:"id"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	// The fingerprint lets the recipient check the payload was not
	// replaced in transit. It reveals nothing about the plaintext.
	fingerprint := token.HashBytes(box.Ciphertext)

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, map[string]any{
			"id":          result.ID,
			"expires_at":  result.ExpiresAt,
			"fingerprint": fingerprint,
		})
	}

	table := &output.Table{}
	table.AddRow("Message ID:", result.ID)
	table.AddRow("Expires:", time.UnixMilli(result.ExpiresAt).Format("2006-01-02 15:04:05 MST"))
	table.AddRow("Fingerprint:", fingerprint)
	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Println("\nShare the message ID and passphrase over separate channels.")
	return nil
}

func messageRead(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("message ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/message/"+id)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var payload messagePayload
	if err := connection.ParseResponse(resp, &payload); err != nil {
		return err
	}

	// The message is already destroyed server-side at this point.
	// Verification and decryption failures cannot be retried.
	if expected := c.String("verify"); expected != "" {
		if !token.VerifyBytes(payload.Ciphertext, expected) {
			return fmt.Errorf("payload fingerprint mismatch: the payload differs from what the sender uploaded")
		}
	}

	plaintext, err := sealbox.Open(&sealbox.Box{
		Ciphertext: payload.Ciphertext,
		Salt:       payload.Salt,
		IV:         payload.IV,
	}, c.String("passphrase"))
	if err != nil {
		return fmt.Errorf("decrypt: %w (the message has been destroyed and cannot be fetched again)", err)
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, map[string]string{
			"message": string(plaintext),
		})
	}

	fmt.Println(string(plaintext))
	return nil
}

func messageDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("message ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Delete(ctx, "/message/"+id)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Deleted bool `json:"deleted"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Message %s destroyed.\n", id)
	return nil
}

// readPlaintext reads the message from the argument, a file, or stdin.
func readPlaintext(c *cli.Context) ([]byte, error) {
	if file := c.String("file"); file != "" {
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			return data, nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}

	if msg := strings.Join(c.Args().Slice(), " "); msg != "" {
		return []byte(msg), nil
	}

	return nil, fmt.Errorf("message required: pass it as an argument or via --file")
}
