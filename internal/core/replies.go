package core

import (
	"strings"
)

// User-facing replies. None of them may carry credentials or stack traces.
const (
	ReplyCourtesy          = "Agradecemos a mensagem! Seguimos à disposição caso precise de algo."
	ReplyClarification     = "Olá! Recebemos sua mensagem. Poderia detalhar melhor o objetivo?"
	ReplyMissingCredential = "Credencial do provedor de IA não configurada."
	ReplyAuthError         = "Erro de autenticação no provedor de IA (verifique a credencial configurada)."
	ReplyRateError         = "Limite de uso do provedor de IA atingido. Tente novamente em instantes."
	ReplyAPIError          = "Erro na API do provedor de IA."
	ReplyUnexpectedError   = "Não foi possível processar no momento. Tente novamente mais tarde."
	ReplyEmptyInput        = "Nenhum texto foi enviado. Cole o conteúdo do e-mail ou envie um arquivo .txt/.pdf."
)

const maxExcerptRunes = 160

// apiErrorReply appends a short excerpt of the provider message, if any
func apiErrorReply(detail string) string {
	detail = Normalize(detail)
	if detail == "" {
		return ReplyAPIError
	}
	return strings.TrimSuffix(ReplyAPIError, ".") + ": " + Preview(detail, maxExcerptRunes)
}
