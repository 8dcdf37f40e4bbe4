// leaderzctl is the operator CLI for a Leaderz server: it converts between
// tournament numbers and keys, hashes the organizer password for
// configuration, and prints a tournament's leaderboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/pflag"

	"github.com/rrazong/leaderz-backend/internal/auth"
	"github.com/rrazong/leaderz-backend/internal/service"
	"github.com/rrazong/leaderz-backend/internal/tournamentkey"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printHelp(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var server string
	var password string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("leaderzctl", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&server, "server", "http://localhost:8080", "base URL of the Leaderz server")
	flagSet.StringVar(&password, "password", "", "password to hash (read from stdin when empty)")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errUsage
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout)
		flagSet.SetOutput(stdout)
		flagSet.PrintDefaults()
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return errUsage
	}

	switch rest[0] {
	case "key":
		return runKey(rest[1:], stdout)
	case "hash-password":
		return runHashPassword(password, stdin, stdout)
	case "leaderboard":
		if len(rest) != 2 {
			return errUsage
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runLeaderboard(ctx, server, rest[1], stdout)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
}

func runKey(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}

	switch args[0] {
	case "encode":
		n, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("tournament number must be a positive integer, got %q", args[1])
		}
		fmt.Fprintln(stdout, tournamentkey.Encode(n))
		return nil
	case "decode":
		n, err := tournamentkey.Decode(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, n)
		return nil
	}
	return errUsage
}

func runHashPassword(password string, stdin io.Reader, stdout io.Writer) error {
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func runLeaderboard(ctx context.Context, server, key string, stdout io.Writer) error {
	client := service.NewLeaderboardServiceClient(http.DefaultClient, server)
	resp, err := client.GetLeaderboard(ctx, connect.NewRequest(&service.GetLeaderboardRequest{TournamentKey: key}))
	if err != nil {
		return fmt.Errorf("failed to get leaderboard: %w", err)
	}

	board := resp.Msg
	fmt.Fprintf(stdout, "%s (%s) %s\n\n", board.Tournament.Name, board.Tournament.Key, board.Tournament.Status)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tTEAM\tTOTAL\tTO PAR\tTHRU")
	for _, e := range board.Leaderboard {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", e.Position, e.TeamName, e.TotalScore, toPar(e.ToPar), e.HolesPlayed)
	}
	return tw.Flush()
}

func toPar(n int) string {
	switch {
	case n == 0:
		return "E"
	case n > 0:
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `leaderzctl manages a Leaderz tournament server.

Usage:
  leaderzctl key encode NUMBER     print the public key of a tournament number
  leaderzctl key decode KEY        print the tournament number behind a key
  leaderzctl hash-password         bcrypt-hash the organizer password
  leaderzctl leaderboard KEY       print a tournament's leaderboard

Flags:
`)
}
