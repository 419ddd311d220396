package admin

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/netx"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
)

const maxAvatarSize = 5 << 20

func lookupUID(ctx context.Context, env *Env, email string) (string, error) {
	acct, err := env.Directory.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", email, err)
	}
	return acct.UID, nil
}

func createUserCmd(r *runner) *cobra.Command {
	var firstName, lastName, role string
	var generate bool

	cmd := &cobra.Command{
		Use:   "create-user EMAIL",
		Short: "Create an identity account and its user record",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withEnv(func(ctx context.Context, env *Env, cmd *cobra.Command, args []string) error {
		email := args[0]
		target, err := models.ParseRole(role)
		if err != nil {
			return err
		}

		var password string
		if generate {
			password, err = common.MakeRandHexString(12)
			if err != nil {
				return err
			}
		} else {
			pw, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			password = string(pw)
		}

		err = env.Accounts.SignUp(ctx, services.SignUpInput{
			Email:     email,
			Password:  password,
			FirstName: firstName,
			LastName:  lastName,
		})
		if err != nil {
			return err
		}

		if target != models.RoleUser {
			uid, err := lookupUID(ctx, env, email)
			if err != nil {
				return err
			}
			if _, err := env.Users.Update(ctx, uid, models.PrincipalUpdate{Role: &target}); err != nil {
				return fmt.Errorf("set role: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %s with role %s\n", email, target)
		if generate {
			fmt.Fprintf(out, "Password: %s\n", password)
		}
		return nil
	})

	cmd.Flags().StringVar(&firstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name (required)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "User, Moderator or Administrator")
	cmd.Flags().BoolVar(&generate, "generate-password", false, "generate and print a random password instead of prompting")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func setRoleCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-role EMAIL ROLE",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = r.withEnv(func(ctx context.Context, env *Env, cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(args[1])
		if err != nil {
			return err
		}
		uid, err := lookupUID(ctx, env, args[0])
		if err != nil {
			return err
		}
		p, err := env.Users.Update(ctx, uid, models.PrincipalUpdate{Role: &role})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Email, p.Role)
		return nil
	})
	return cmd
}

func setDisabledCmd(r *runner, disabled bool) *cobra.Command {
	use, short, done := "enable EMAIL", "Re-enable a disabled user", "enabled"
	if disabled {
		use, short, done = "disable EMAIL", "Disable a user; existing sessions stop verifying", "disabled"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withEnv(func(ctx context.Context, env *Env, cmd *cobra.Command, args []string) error {
		uid, err := lookupUID(ctx, env, args[0])
		if err != nil {
			return err
		}
		if _, err := env.Users.SetDisabled(ctx, uid, disabled); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], done)
		return nil
	})
	return cmd
}

func uploadAvatarCmd(r *runner) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload-avatar EMAIL FILE",
		Short: "Upload a profile image for a user",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = r.withEnv(func(ctx context.Context, env *Env, cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if len(data) > maxAvatarSize {
			return fmt.Errorf("%w: image larger than %d bytes", common.ErrValidation, maxAvatarSize)
		}
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		uid, err := lookupUID(ctx, env, args[0])
		if err != nil {
			return err
		}
		upload, err := env.Uploads.CreateUpload(ctx, uid)
		if err != nil {
			return err
		}
		if err := netx.UploadToPresignedURL(ctx, env.HTTPClient, upload.UploadURL, contentType, data); err != nil {
			return err
		}
		if _, err := env.Users.SetProfileImage(ctx, uid, upload.Key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s\n", args[1], upload.Key)
		return nil
	})
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type, detected from the file when empty")
	return cmd
}
