package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/proposals/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter display name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s\n", res.Email)
	return nil
}

// Login authenticates and keeps the session token for later commands.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.token = res.Token
	a.email = res.Email
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.token = ""
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Create(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	p, created, err := a.api.CreateProposal(ctx, a.token)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintln(a.out, "Proposal created")
	} else {
		fmt.Fprintln(a.out, "You already have a proposal")
	}
	fmt.Fprintf(a.out, "ID:    %s\nToken: %s\nLink:  %s\n", p.ProposalID, p.Token, p.ShareableLink)
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	p, err := a.api.Mine(ctx, a.token)
	if err != nil {
		return err
	}

	answer := "not answered yet"
	if p.Response != nil {
		answer = *p.Response
	}
	fmt.Fprintf(a.out, "ID:       %s\nLink:     %s\nResponse: %s\n", p.ProposalID, p.ShareableLink, answer)
	return nil
}

// Respond answers a proposal. It works without logging in.
func (a *App) Respond(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: respond <token> <yes|no>")
	}

	res, err := a.api.Respond(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %s\n%s\n", res.Message, res.Response, res.Notification)
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: status <proposal id>")
	}

	st, err := a.api.Status(ctx, a.token, args[0])
	if err != nil {
		return err
	}

	if !st.Answered || st.Response == nil {
		fmt.Fprintln(a.out, "Waiting for an answer...")
		return nil
	}

	fmt.Fprintf(a.out, "Answer: %s\n", *st.Response)
	if st.Notification != nil {
		fmt.Fprintln(a.out, *st.Notification)
	}
	if st.AnsweredAt != nil {
		fmt.Fprintf(a.out, "Answered at %s\n", st.AnsweredAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *App) Notifications(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	list, err := a.api.Notifications(ctx, a.token)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}
	for _, n := range list {
		fmt.Fprintf(a.out, "[%s] %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Message)
	}
	return nil
}
