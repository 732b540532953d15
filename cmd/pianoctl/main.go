// Command pianoctl drives the game client from a terminal and prints results as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"piano-quest/internal/app"
	"piano-quest/internal/common/config"
	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	avatarmodels "piano-quest/internal/features/avatar/models"
	levelmodels "piano-quest/internal/features/level/models"
	sublevelmodels "piano-quest/internal/features/sublevel/models"
)

const usage = `usage: pianoctl <command> [args]

commands:
  login -provider <google|apple|telegram|dev> -credential <value>
  dev-login <username>
  verify
  whoami [-refresh]
  logout
  avatar list|active|outfits
  avatar get|delete|activate <id>
  avatar create -name <name> [-skin s] [-hair-style s] [-hair-color c] [-eye-color c]
  avatar rename <id> <name>
  avatar unlock|equip <id> <outfit>
  avatar energy|xp <id> <delta>
  levels list|unlocked|progress
  levels get|sublevels|summary <id>
  sublevels get <id>
  sublevels progress
  submit [-completed] [-stars n] [-score n] <sublevel id>
  recognize <file>
`

var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger.InitWithWriter("pianoctl", cfg.Debug, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return 1
	}
	defer a.Close()

	result, err := dispatch(ctx, a, args[0], args[1:])
	if errors.Is(err, errUsage) {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			logger.Debug().Str("code", string(appErr.Code)).Interface("details", appErr.Details).Msg("Command failed")
		}
		fmt.Fprintln(stderr, "error:", apperrors.Message(err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, a *app.App, cmd string, args []string) (any, error) {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		provider := fs.String("provider", "", "social provider")
		credential := fs.String("credential", "", "provider credential")
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		return a.Auth.Login(ctx, *provider, *credential)
	case "dev-login":
		if len(args) != 1 {
			return nil, errUsage
		}
		return a.Auth.DevLogin(ctx, args[0])
	case "verify":
		ok, err := a.Start(ctx)
		return map[string]bool{"valid": ok}, err
	case "whoami":
		fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
		refresh := fs.Bool("refresh", false, "load the user from the backend")
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}
		if *refresh {
			return a.Auth.FetchMe(ctx)
		}
		return a.Auth.CurrentUser(ctx)
	case "logout":
		return map[string]bool{"signed_out": true}, a.Auth.Logout(ctx)
	case "avatar":
		return avatarCommand(ctx, a, args)
	case "levels":
		return levelsCommand(ctx, a, args)
	case "sublevels":
		return sublevelsCommand(ctx, a, args)
	case "submit":
		fs := flag.NewFlagSet("submit", flag.ContinueOnError)
		completed := fs.Bool("completed", false, "the run finished the song")
		stars := fs.Int("stars", 0, "stars earned (0-3)")
		score := fs.Int("score", 0, "score of the run")
		if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
			return nil, errUsage
		}
		return a.Sublevels.SubmitProgress(ctx, fs.Arg(0), sublevelmodels.SubmitProgressRequest{
			Completed: *completed,
			Stars:     *stars,
			Score:     *score,
		})
	case "recognize":
		if len(args) != 1 {
			return nil, errUsage
		}
		return a.Recognition.RecognizeFile(ctx, args[0])
	}
	return nil, errUsage
}

func avatarCommand(ctx context.Context, a *app.App, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	op, rest := args[0], args[1:]
	switch {
	case op == "list" && len(rest) == 0:
		return a.Avatars.List(ctx)
	case op == "active" && len(rest) == 0:
		return a.Avatars.Active(ctx)
	case op == "outfits" && len(rest) == 0:
		return a.Avatars.Outfits(ctx)
	case op == "get" && len(rest) == 1:
		return a.Avatars.Get(ctx, rest[0])
	case op == "delete" && len(rest) == 1:
		return map[string]string{"deleted": rest[0]}, a.Avatars.Delete(ctx, rest[0])
	case op == "activate" && len(rest) == 1:
		return a.Avatars.SetActive(ctx, rest[0])
	case op == "create":
		fs := flag.NewFlagSet("avatar create", flag.ContinueOnError)
		name := fs.String("name", "", "avatar name")
		var c avatarmodels.Customization
		fs.StringVar(&c.SkinTone, "skin", "", "skin tone")
		fs.StringVar(&c.HairStyle, "hair-style", "", "hair style")
		fs.StringVar(&c.HairColor, "hair-color", "", "hair color")
		fs.StringVar(&c.EyeColor, "eye-color", "", "eye color")
		if err := fs.Parse(rest); err != nil {
			return nil, errUsage
		}
		return a.Avatars.Create(ctx, avatarmodels.CreateAvatarRequest{Name: *name, Customization: c})
	case op == "rename" && len(rest) == 2:
		return a.Avatars.Update(ctx, rest[0], avatarmodels.UpdateAvatarRequest{Name: &rest[1]})
	case op == "unlock" && len(rest) == 2:
		return a.Avatars.UnlockOutfit(ctx, rest[0], rest[1])
	case op == "equip" && len(rest) == 2:
		return a.Avatars.EquipOutfit(ctx, rest[0], rest[1])
	case (op == "energy" || op == "xp") && len(rest) == 2:
		delta, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, errUsage
		}
		if op == "energy" {
			return a.Avatars.AdjustEnergy(ctx, rest[0], delta)
		}
		return a.Avatars.AdjustExperience(ctx, rest[0], delta)
	}
	return nil, errUsage
}

func levelsCommand(ctx context.Context, a *app.App, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	op, rest := args[0], args[1:]
	switch {
	case op == "list" && len(rest) == 0:
		return a.Levels.List(ctx)
	case op == "unlocked" && len(rest) == 0:
		return a.Levels.Unlocked(ctx)
	case op == "progress" && len(rest) == 0:
		return a.Levels.Progress(ctx)
	case op == "get" && len(rest) == 1:
		return a.Levels.Get(ctx, rest[0])
	case op == "sublevels" && len(rest) == 1:
		return a.Sublevels.ListByLevel(ctx, rest[0])
	case op == "summary" && len(rest) == 1:
		level, err := a.Levels.Get(ctx, rest[0])
		if err != nil {
			return nil, err
		}
		sublevels, err := a.Sublevels.ListByLevel(ctx, rest[0])
		if err != nil {
			return nil, err
		}
		p := levelmodels.Summarize(*level, sublevels)
		return struct {
			levelmodels.LevelProgress
			Percent   int  `json:"percent"`
			Completed bool `json:"completed"`
		}{p, p.Percent(), p.Completed()}, nil
	}
	return nil, errUsage
}

func sublevelsCommand(ctx context.Context, a *app.App, args []string) (any, error) {
	switch {
	case len(args) == 2 && args[0] == "get":
		sl, err := a.Sublevels.Get(ctx, args[1])
		if err != nil {
			return nil, err
		}
		return struct {
			*sublevelmodels.Sublevel
			State sublevelmodels.State `json:"state"`
		}{sl, sl.State()}, nil
	case len(args) == 1 && args[0] == "progress":
		return a.Sublevels.Progress(ctx)
	}
	return nil, errUsage
}
