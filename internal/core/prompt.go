package core

import (
	"fmt"
	"strings"
)

const systemPromptFormat = `Você é um classificador de emails. Política de negócio:
- Classifique apenas como '%[1]s' OU '%[2]s'.
- '%[2]s' inclui mensagens de FELICITAÇÕES/AGRADECIMENTO que não contenham pedido, pergunta ou ação clara.
- '%[1]s' quando houver solicitação, pergunta, follow-up de chamado, envio de documentação, prazos, ou qualquer ação requerida.
- Responda SOMENTE em JSON: {"category":"%[1]s|%[2]s","reply":"<texto curto PT-BR>"}.
Exemplos:
1) "Obrigado pelo excelente atendimento!" -> {"category":"%[2]s","reply":"Agradecemos o retorno! Ficamos à disposição quando precisar."}
2) "Obrigado. Pode confirmar se o chamado #123 foi encerrado?" -> {"category":"%[1]s","reply":"Claro! Vou verificar o status do chamado #123 e retorno em seguida."}
3) "Parabéns pelo serviço." -> {"category":"%[2]s","reply":"Muito obrigado! Seguimos à disposição."}
`

// delimiterBreaker stops the email text from closing the fence early
var delimiterBreaker = strings.NewReplacer("'''", "' ' '")

const userPromptFormat = `Texto do email:
'''%[3]s'''

Rótulos válidos: ["%[1]s","%[2]s"].
Devolva JSON: {"category":"%[1]s|%[2]s","reply":"<texto curto>"}`

// BuildCompletionRequest assembles the system and user messages for text.
// The email text is fenced so that its content is never read as instructions.
func BuildCompletionRequest(labels LabelSet, text string) CompletionRequest {
	return CompletionRequest{
		System:      fmt.Sprintf(systemPromptFormat, labels.Actionable, labels.NonActionable),
		User:        fmt.Sprintf(userPromptFormat, labels.Actionable, labels.NonActionable, delimiterBreaker.Replace(text)),
		Temperature: 0,
	}
}
