package gateway

import (
	"fmt"

	"github.com/rs/zerolog"

	"napps_backend/internals/configs"
)

// New memilih adapter sesuai GATEWAY_MODE dan GATEWAY_PROVIDER. Dipanggil sekali saat startup.
func New(cfg *configs.Config, l zerolog.Logger) (Gateway, error) {
	gc := cfg.Gateway
	switch gc.Mode {
	case configs.GatewayModeSimulated:
		l.Warn().Msg("payment gateway running in SIMULATED mode, no real money moves")
		return NewSimulated(cfg.PublicBaseURL, gc, l), nil
	case configs.GatewayModeLive:
		switch gc.Provider {
		case configs.GatewayProviderPaystack:
			return NewPaystack(gc, l), nil
		case configs.GatewayProviderMidtrans:
			return NewMidtrans(gc, l), nil
		}
		return nil, fmt.Errorf("unknown gateway provider %q", gc.Provider)
	}
	return nil, fmt.Errorf("unknown gateway mode %q", gc.Mode)
}
