package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/ui"
)

var timeNow = time.Now

func doAuth(args []string, opt Options) int {
	if len(args) == 0 {
		ui.Fail("usage: todo auth login [token] | logout | status | whoami")
		return 2
	}
	if opt.Auth == nil {
		ui.Fail("auth: no credential store")
		return 1
	}
	switch args[0] {
	case "login":
		return authLogin(args[1:], opt)
	case "logout":
		return authLogout(opt)
	case "status":
		return authStatus(opt)
	case "whoami":
		return authWhoAmI(opt)
	}
	ui.Fail("unknown auth subcommand: " + args[0])
	return 2
}

func authLogin(args []string, opt Options) int {
	token := strings.Join(args, " ")
	if token == "" {
		fmt.Fprint(ui.Stdout, "Paste API token: ")
		line, _ := bufio.NewReader(opt.Stdin).ReadString('\n')
		token = strings.TrimSpace(line)
	}
	if token == "" {
		ui.Fail("login: empty token")
		return 2
	}
	ti, err := opt.Auth.Save(token, timeNow())
	if err != nil {
		ui.Fail("login: " + err.Error())
		return 1
	}
	msg := "logged in"
	if ti.ExpiresAt != nil {
		msg += ", token expires " + ti.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	ui.OK(msg)
	return 0
}

func authLogout(opt Options) int {
	if ti, _ := opt.Auth.Token(); ti != nil && ti.Source == auth.SourceEnv {
		ui.OK("token is provided by " + auth.EnvToken + " (nothing to delete)")
		return 0
	}
	if err := opt.Auth.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

// authWhoAmI decodes a JWT locally without verifying it.
func authWhoAmI(opt Options) int {
	ti, err := opt.Auth.Token()
	if err != nil || ti == nil {
		ui.Fail("not logged in")
		ui.Hint("run `todo auth login <token>` or set " + auth.EnvToken)
		return 1
	}
	claims := auth.Claims(ti.Token)
	if claims == nil {
		fmt.Fprintln(ui.Stdout, "Opaque token (cannot introspect locally).")
		fmt.Fprintln(ui.Stdout, "source:", ti.Source)
		return 0
	}
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{ui.C(ui.Current().Title, "JWT claims")}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-8s %v", k, claims[k]))
	}
	ui.Panel(lines)
	return 0
}

func authStatus(opt Options) int {
	ti, err := opt.Auth.Token()
	if err != nil {
		ui.Fail("status: " + err.Error())
		return 1
	}
	if ti == nil {
		ui.Fail("not logged in")
		ui.Hint("run `todo auth login <token>` or set " + auth.EnvToken)
		return 1
	}

	t := ui.Current()
	lines := []string{
		ui.C(t.Title, "Logged in"),
		"Source   " + string(ti.Source),
		"Token    " + maskToken(ti.Token),
	}
	if !ti.CreatedAt.IsZero() {
		lines = append(lines, "Saved    "+formatTime(ti.CreatedAt))
	}
	if ti.ExpiresAt != nil {
		exp := formatTime(*ti.ExpiresAt)
		if ti.Expired(timeNow()) {
			exp = ui.C(t.Error, exp+" (expired)")
		}
		lines = append(lines, "Expires  "+exp)
	}
	if sub := auth.Subject(ti.Token); sub != "" {
		lines = append(lines, "Subject  "+sub)
	}
	ui.Panel(lines)
	return 0
}

func maskToken(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", 8) + tok[len(tok)-4:]
}
