package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotp/internal/twofactor"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.twofactor.enabled") {
		if err := twofactor.New(twofactor.Dependency{
			Store:      a.store,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Instrument: a.ins,
			HMAC:       a.hmac,
			Encryptor:  a.mfaEncryptor,
			Clock:      a.clock,
			Totp:       a.totp,
			QRCode:     a.qrcode,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module twofactor", "error", err)
			os.Exit(1)
		}
	}
}
