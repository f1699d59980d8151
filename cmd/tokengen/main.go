// Package main provides a CLI tool for generating actor access tokens for the
// unitgate API. Tokens are signed with the dev key by default and will NOT
// work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	jwttoken "unitgate/internal/jwt_token"
	"unitgate/internal/seeder"
	id "unitgate/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "unitgate"
	defaultTokenTTL = 15 * time.Minute
)

// demoOccupants are the occupants the demo seed places in Maple Court.
var demoOccupants = map[string]struct {
	phone string
	name  string
}{
	"owner":    {phone: "09121111111", name: "Ali Owner"},
	"tenant":   {phone: "09122222222", name: "Reza Tenant"},
	"resident": {phone: "09123333333", name: "Mina Resident"},
}

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

type common struct {
	userID *string
	ttl    *time.Duration
	key    *string
	json   *bool
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		userID: fs.String("user-id", "", "User ID (UUID). Generated if empty."),
		ttl:    fs.Duration("ttl", defaultTokenTTL, "Token time-to-live"),
		key:    fs.String("key", "", "Signing key. Defaults to $JWT_SIGNING_KEY, then the dev key."),
		json:   fs.Bool("json", false, "Output as JSON"),
	}
}

func main() {
	actorCmd := flag.NewFlagSet("actor", flag.ExitOnError)
	managerCmd := flag.NewFlagSet("manager", flag.ExitOnError)
	occupantCmd := flag.NewFlagSet("occupant", flag.ExitOnError)

	actorCommon := commonFlags(actorCmd)
	actorPhone := actorCmd.String("phone", "", "Phone number (required)")
	actorName := actorCmd.String("name", "", "Full name")
	actorManages := actorCmd.String("manages", "", "Comma-separated building IDs the actor manages")

	managerCommon := commonFlags(managerCmd)

	occupantCommon := commonFlags(occupantCmd)
	occupantRole := occupantCmd.String("role", "owner", "Demo occupant: owner, tenant or resident")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "actor":
		actorCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		if strings.TrimSpace(*actorPhone) == "" {
			fmt.Fprintln(os.Stderr, "-phone is required")
			os.Exit(1)
		}
		managed := parseBuildings(*actorManages)
		generate(actorCommon, *actorPhone, *actorName, managed, "actor")
	case "manager":
		managerCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		var managed []id.BuildingID
		for _, b := range seeder.Buildings() {
			managed = append(managed, b.ID)
		}
		generate(managerCommon, seeder.DemoManagerPhone, seeder.DemoManagerName, managed, "demo manager")
	case "occupant":
		occupantCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		o, ok := demoOccupants[*occupantRole]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown demo occupant: %s\n", *occupantRole)
			os.Exit(1)
		}
		generate(occupantCommon, o.phone, o.name, nil, "demo "+*occupantRole)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate actor access tokens for the unitgate API

WARNING: Tokens default to the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  actor     Token for any phone, optionally managing buildings
  manager   Token for the demo manager of the seeded buildings
  occupant  Token for a seeded occupant (owner, tenant, resident)

Examples:
  # Applicant with a fresh user id
  tokengen actor -phone 09125555555 -name "New Applicant"

  # Manager of one building
  tokengen actor -phone 09120000009 -manages "550e8400-e29b-41d4-a716-446655440000"

  # Demo manager, JSON output
  tokengen manager -json

  # Owner of Maple Court unit 12
  tokengen occupant -role owner

Use "tokengen <command> -h" for more information about a command.`)
}

func generate(c common, phone, name string, managed []id.BuildingID, kind string) {
	signingKey := *c.key
	keyType := "flag"
	if signingKey == "" {
		signingKey = os.Getenv("JWT_SIGNING_KEY")
		keyType = "env"
	}
	if signingKey == "" {
		signingKey = devSigningKey
		keyType = "dev"
	}

	actor := id.Actor{
		UserID:           id.UserID(parseOrGenerateUUID(*c.userID, "user-id")),
		Phone:            phone,
		FullName:         name,
		ManagedBuildings: managed,
	}

	svc := jwttoken.NewJWTService(signingKey, defaultIssuer, *c.ttl)
	token, err := svc.GenerateAccessToken(context.Background(), actor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	managedStrings := make([]string, 0, len(managed))
	for _, b := range managed {
		managedStrings = append(managedStrings, b.String())
	}

	if *c.json {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: c.ttl.String(),
			Claims: map[string]any{
				"sub":               actor.UserID.String(),
				"phone":             id.NormalizePhone(phone),
				"full_name":         name,
				"managed_buildings": managedStrings,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Printf("Access Token (%s)\n", kind)
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", *c.ttl)
	fmt.Printf("User ID:     %s\n", actor.UserID)
	fmt.Printf("Phone:       %s\n", id.NormalizePhone(phone))
	if name != "" {
		fmt.Printf("Name:        %s\n", name)
	}
	if len(managedStrings) > 0 {
		fmt.Printf("Manages:     %s\n", strings.Join(managedStrings, ", "))
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/membership/list")
}

func parseOrGenerateUUID(input, fieldName string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s UUID: %s\n", fieldName, input)
		os.Exit(1)
	}
	return parsed
}

func parseBuildings(raw string) []id.BuildingID {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]id.BuildingID, 0, len(parts))
	for _, s := range parts {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		b, err := id.ParseBuildingID(trimmed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid building ID: %s\n", trimmed)
			os.Exit(1)
		}
		result = append(result, b)
	}
	return result
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
