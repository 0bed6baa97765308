package system

import (
	"fmt"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/permission"
)

type PermissionCmd struct {
	Status  PermissionStatusCmd  `cmd:"" help:"Show the notification permission state." default:"1"`
	Request PermissionRequestCmd `cmd:"" help:"Ask for permission to show notifications."`
	Reset   PermissionResetCmd   `cmd:"" help:"Forget the recorded answer so the next request prompts again."`
}

type PermissionStatusCmd struct{}

func (c *PermissionStatusCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Gate.CheckStatus(ctx.Ctx)
	if err != nil {
		return err
	}
	fmt.Println(describeStatus(st))
	return nil
}

func describeStatus(st permission.Status) string {
	switch {
	case st.Authorized:
		return "✓ Notifications are allowed"
	case st.Denied:
		return "❌ Notifications are denied (run 'nudge permission reset' to ask again)"
	default:
		return "ℹ Notification permission has not been requested yet"
	}
}

type PermissionRequestCmd struct{}

func (c *PermissionRequestCmd) Run(ctx *cli.Context) error {
	granted, err := ctx.Gate.RequestAuthorization(ctx.Ctx)
	if err != nil {
		return err
	}
	if !granted {
		return permission.ErrPermission
	}
	fmt.Println("✓ Notifications are allowed")
	return nil
}

type PermissionResetCmd struct{}

func (c *PermissionResetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Center.Reset(ctx.Ctx); err != nil {
		return err
	}
	fmt.Println("✓ Notification permission reset")
	return nil
}
