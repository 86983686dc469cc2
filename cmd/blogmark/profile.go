package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blogmark/blogmark/internal/store"
)

func runProfile(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: blogmark profile <set|show> [flags]")
	}

	ctx := context.Background()
	a, rest, err := openApp(ctx, args[1:])
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "set":
		return profileSet(ctx, a, rest)
	case "show":
		return profileShow(ctx, a)
	}
	return fmt.Errorf("unknown profile subcommand: %s", args[0])
}

func profileSet(ctx context.Context, a *app, args []string) error {
	p := &store.Profile{UserID: a.userID}

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--interests" && i+1 < len(args):
			i++
			p.Interests = splitList(args[i])
		case strings.HasPrefix(args[i], "--interests="):
			p.Interests = splitList(strings.TrimPrefix(args[i], "--interests="))
		case args[i] == "--expertise" && i+1 < len(args):
			i++
			m, err := parseExpertise(args[i])
			if err != nil {
				return err
			}
			p.Expertise = m
		case strings.HasPrefix(args[i], "--expertise="):
			m, err := parseExpertise(strings.TrimPrefix(args[i], "--expertise="))
			if err != nil {
				return err
			}
			p.Expertise = m
		case args[i] == "--length" && i+1 < len(args):
			i++
			p.PreferredLength = args[i]
		case args[i] == "--depth" && i+1 < len(args):
			i++
			p.ContentDepth = args[i]
		case args[i] == "--goals" && i+1 < len(args):
			i++
			p.Goals = splitList(args[i])
		case strings.HasPrefix(args[i], "--goals="):
			p.Goals = splitList(strings.TrimPrefix(args[i], "--goals="))
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	// Upsert replaces the profile wholesale; unset flags clear their fields.
	if err := a.store.PutProfile(ctx, p); err != nil {
		return err
	}
	fmt.Println("Profile saved")
	return nil
}

func profileShow(ctx context.Context, a *app) error {
	p, err := a.store.GetProfile(ctx, a.userID)
	if err != nil {
		return err
	}
	data, _ := json.MarshalIndent(p, "", "  ")
	fmt.Println(string(data))
	return nil
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseExpertise parses "topic=level,topic2=level2" pairs.
func parseExpertise(s string) (map[string]store.ExpertiseLevel, error) {
	out := make(map[string]store.ExpertiseLevel)
	for _, pair := range splitList(s) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid expertise entry %q (want topic=level)", pair)
		}
		lvl, err := store.ParseExpertiseLevel(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(k)] = lvl
	}
	return out, nil
}
