// Command gentoken prints development credentials for fideliza:
// a random secret key, or a bearer token signed with the given secret
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/service/auth/tokenmanager"
)

const SecretKeyBytesLen = 32

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gentoken: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, out io.Writer) error {
	var (
		newSecret bool
		secret    = getenv("SECRET_KEY")
		userID    string
		role      string
		companyID string
		ttl       = time.Hour
	)

	fs := pflag.NewFlagSet("gentoken", pflag.ContinueOnError)
	fs.BoolVar(&newSecret, "new-secret", false, "Print random secret key and exit")
	fs.StringVarP(&secret, "secret-key", "s", secret, "Secret key to sign token with (SECRET_KEY)")
	fs.StringVarP(&userID, "user", "u", "", "Account id, random if empty")
	fs.StringVarP(&role, "role", "r", string(models.RoleClient), "Role (client, collaborator, admin)")
	fs.StringVarP(&companyID, "company", "c", "", "Company id, required for staff roles")
	fs.DurationVarP(&ttl, "ttl", "t", ttl, "Token lifetime")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if newSecret {
		s, err := generateSecret()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		return err
	}

	p, err := buildPrincipal(userID, role, companyID)
	if err != nil {
		return err
	}

	tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: secret, AccessTTL: ttl})
	if err != nil {
		return err
	}

	issued, err := tm.Generate(p)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, issued.Value)
	return err
}

func generateSecret() (string, error) {
	b := make([]byte, SecretKeyBytesLen)

	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error while generating secret key: %w", err)
	}

	return hex.EncodeToString(b), nil
}

func buildPrincipal(userID string, role string, companyID string) (models.Principal, error) {
	var p models.Principal

	r, err := models.ParseRole(role)
	if err != nil {
		return p, err
	}
	p.Role = r

	p.UserID = uuid.New()
	if userID != "" {
		if p.UserID, err = uuid.Parse(userID); err != nil {
			return p, fmt.Errorf("invalid user id: %w", err)
		}
	}

	switch {
	case companyID != "":
		id, err := uuid.Parse(companyID)
		if err != nil {
			return p, fmt.Errorf("invalid company id: %w", err)
		}
		p.CompanyID = &id
	case r.IsStaff():
		return p, errors.New("company id is required for staff roles")
	}

	return p, nil
}
