package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/claim"
	apperrors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/internal/i18n"
)

// NewDailyHandler handles /daily and the menu_daily button.
func NewDailyHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := RequestContext(c)
		t := Translator(c, d.I18n)

		roles, err := d.Roles.Roles(ctx, sender.ID)
		if err != nil {
			return apperrors.NewPlatformError("roles", err)
		}

		result, err := d.Economy.ClaimDaily(ctx, sender.ID, roles)
		if err != nil {
			return apperrors.NewPersistenceError(fmt.Errorf("daily claim for %d: %w", sender.ID, err))
		}

		switch result.Outcome {
		case claim.Ineligible:
			return Reply(c, i18n.Tf(t, "claim.ineligible"))
		case claim.OnCooldown:
			hours, minutes := result.HoursMinutes()
			return Reply(c, i18n.Tf(t, "claim.cooldown", hours, minutes))
		case claim.Granted:
			return Reply(c, i18n.Tf(t, "claim.granted", result.Amount))
		default:
			return fmt.Errorf("unexpected claim outcome %s", result.Outcome)
		}
	}
}
