package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vietddude/paygate/internal/auth"
	"github.com/vietddude/paygate/internal/payment"
)

type tokenView struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Address  string `json:"address"`
}

type chainView struct {
	Key   string    `json:"key"`
	Name  string    `json:"name"`
	Token tokenView `json:"token"`
}

type configResponse struct {
	PayTo      string      `json:"payTo"`
	PriceUnits string      `json:"priceUnits"`
	Chains     []chainView `json:"chains"`
}

type verifyRequest struct {
	TxHash string `json:"txHash"`
	Chain  string `json:"chain"`
}

type verifyResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

type meResponse struct {
	OK      bool         `json:"ok"`
	Payload *auth.Claims `json:"payload"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	chains := make([]chainView, 0, len(s.opts.Chains))
	for _, c := range s.opts.Chains {
		chains = append(chains, chainView{
			Key:  c.Key,
			Name: c.Name,
			Token: tokenView{
				Symbol:   c.Token.Symbol,
				Decimals: c.Token.Decimals,
				Address:  c.Token.Address,
			},
		})
	}
	writeJSON(w, http.StatusOK, configResponse{
		PayTo:      s.opts.PayTo,
		PriceUnits: s.opts.PriceUnits,
		Chains:     chains,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	// An unreadable body is treated as empty and fails chain validation.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

	res, err := s.opts.Verifier.Verify(r.Context(), req.TxHash, req.Chain)
	if err != nil {
		status := verifyStatus(err)
		if status == http.StatusInternalServerError {
			s.log.Error("Verification failed", "chain", req.Chain, "tx", req.TxHash, "error", err)
		}
		writeError(w, status, payment.Code(err))
		return
	}

	token, err := s.opts.Issuer.Issue(auth.Grant{
		Chain:  res.Chain.Key,
		Token:  res.Chain.Token.Symbol,
		TxHash: req.TxHash,
		Amount: s.opts.PriceUnits,
	})
	if err != nil {
		s.log.Error("Issuing credential failed", "chain", res.Chain.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{OK: true, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{OK: true, Payload: claims})
}

func verifyStatus(err error) int {
	switch {
	case errors.Is(err, payment.ErrBadChain),
		errors.Is(err, payment.ErrBadTxHash),
		errors.Is(err, payment.ErrFailedTx):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrNotPaid):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
