package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/marileigh/stitchloom/internal/model"
	"github.com/marileigh/stitchloom/internal/service"
)

// counterFlag collects repeatable -counter values of the form
// "name|rows|stitches|notes"; trailing parts may be omitted.
type counterFlag []model.Counter

func (c *counterFlag) String() string { return fmt.Sprintf("%d counters", len(*c)) }

func (c *counterFlag) Set(v string) error {
	parts := strings.SplitN(v, "|", 4)
	var ctr model.Counter
	ctr.Name = parts[0]
	if len(parts) > 1 {
		ctr.Rows = parts[1]
	}
	if len(parts) > 2 {
		ctr.Stitches = parts[2]
	}
	if len(parts) > 3 {
		ctr.Notes = parts[3]
	}
	*c = append(*c, ctr)
	return nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad project id %q", s)
	}
	return id, nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := a.auth.Register(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Println("registered and logged in as", *email, "("+id.String()+")")
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.auth.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Println("logged in as", *email)
	return nil
}

func cmdWhoami(ctx context.Context, a *app) error {
	id, email, err := a.auth.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Println(email, "("+id.String()+")")
	return nil
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "project name (required)")
	yarn := fs.String("yarn", "", "yarn type")
	needle := fs.String("needle", "", "needle size")
	notes := fs.String("notes", "", "additional notes")
	pattern := fs.String("pattern", "", "link to pattern")
	image := fs.String("image", "", "image reference")
	var counters counterFlag
	fs.Var(&counters, "counter", `counter as "name|rows|stitches|notes" (repeatable)`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.projects.Create(ctx, model.ProjectDraft{
		ProjectName:     *name,
		YarnType:        *yarn,
		NeedleSize:      *needle,
		AdditionalNotes: *notes,
		LinkToPattern:   *pattern,
		ImageURI:        *image,
		Counters:        counters,
	})
	if err != nil {
		return err
	}
	fmt.Println(id.String())
	return nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	status := fs.String("status", "all", "all|done|wip")
	query := fs.String("q", "", "search over name, yarn type, needle size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		ps  []model.Project
		err error
	)
	switch *status {
	case "done":
		ps, err = a.projects.ListByStatus(ctx, true)
	case "wip":
		ps, err = a.projects.ListByStatus(ctx, false)
	case "all":
		ps, err = a.projects.List(ctx)
	default:
		return fmt.Errorf("bad -status %q", *status)
	}
	if err != nil {
		return err
	}

	ps = service.Search(ps, *query)
	if len(ps) == 0 {
		fmt.Println("no projects")
		return nil
	}
	for _, p := range ps {
		mark := " "
		if p.IsCompleted {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s  (%d counters)\n", mark, p.ID, p.ProjectName, len(p.Counters))
	}
	return nil
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	p, err := a.projects.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Println(p.ProjectName)
	if p.YarnType != "" {
		fmt.Println("  yarn:   ", p.YarnType)
	}
	if p.NeedleSize != "" {
		fmt.Println("  needles:", p.NeedleSize)
	}
	if p.LinkToPattern != "" {
		fmt.Println("  pattern:", p.LinkToPattern)
	}
	if p.AdditionalNotes != "" {
		fmt.Println("  notes:  ", p.AdditionalNotes)
	}
	if p.ImageURI != "" {
		fmt.Println("  image:  ", p.ImageURI)
	}
	fmt.Println("  done:   ", p.IsCompleted)
	for i, c := range p.Counters {
		fmt.Printf("  counter %d: %s rows %d/%d stitches %d/%d %s\n",
			i, c.Name, c.CompletedRows, c.TargetRows(), c.CompletedStitches, c.TargetStitches(), c.Notes)
	}
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	name := fs.String("name", "", "project name")
	yarn := fs.String("yarn", "", "yarn type")
	needle := fs.String("needle", "", "needle size")
	notes := fs.String("notes", "", "additional notes")
	pattern := fs.String("pattern", "", "link to pattern")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}

	// Only flags the user actually set become part of the patch.
	var patch model.ProjectPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.ProjectName = name
		case "yarn":
			patch.YarnType = yarn
		case "needle":
			patch.NeedleSize = needle
		case "notes":
			patch.AdditionalNotes = notes
		case "pattern":
			patch.LinkToPattern = pattern
		}
	})
	return a.projects.Update(ctx, id, patch)
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	return a.projects.Delete(ctx, id)
}

func cmdComplete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	undo := fs.Bool("undo", false, "mark back in progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	return a.projects.SetComplete(ctx, id, !*undo)
}

func cmdImage(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("image", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	uri := fs.String("uri", "", "image reference")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	return a.projects.SetImage(ctx, id, *uri)
}

func cmdCounter(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("counter", flag.ContinueOnError)
	rawID := fs.String("id", "", "project id")
	index := fs.Int("index", 0, "counter position")
	field := fs.String("field", "rows", "rows|stitches")
	dec := fs.Bool("dec", false, "decrement instead of increment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(*rawID)
	if err != nil {
		return err
	}

	var cf service.CounterField
	switch *field {
	case "rows":
		cf = service.CounterRows
	case "stitches":
		cf = service.CounterStitches
	default:
		return fmt.Errorf("bad -field %q", *field)
	}

	delta := 1
	if *dec {
		delta = -1
	}
	return a.projects.BumpCounter(ctx, id, *index, cf, delta)
}
