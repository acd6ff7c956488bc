package auth

// User facing alert texts. Login and registration word their failures
// differently, so each has its own mapping.
const (
	MsgLoginMissingFields = "Preencha todos os campos para entrar na fazenda! 🌾"
	MsgLoginSuccess       = "Bem-vindo de volta, produtor! 🚁"
	MsgLoginGeneric       = "Erro ao fazer login. Tente novamente mais tarde."

	MsgRegisterMissingFields = "Preencha todos os campos, como uma boa colheita!"
	MsgRegisterWeakPassword  = "A senha deve ter pelo menos %d caracteres (como uma cerca bem feita!)"
	MsgRegisterSuccess       = "Conta criada com sucesso! Bem-vindo ao campo! 🌾"
	MsgRegisterGeneric       = "Erro na plantação. Tente novamente! 🌧️"
)

var loginMessages = map[ErrorKind]string{
	KindUserNotFound:    "Usuário não encontrado! Parece que você ainda não plantou sua conta. 🌱",
	KindWrongPassword:   "Senha incorreta! Verifique e tente novamente. 🔒",
	KindInvalidEmail:    "Email inválido! Digite um email válido. 📧",
	KindTooManyRequests: "Muitas tentativas! Aguarde um momento para tentar novamente. ⏳",
	KindNetworkFailure:  "Erro de conexão! Verifique sua internet. 🌐",
}

var registerMessages = map[ErrorKind]string{
	KindEmailInUse:     "Este email já está sendo cultivado por outra pessoa!",
	KindInvalidEmail:   "Email inválido! Parece uma semente estragada.",
	KindWeakPassword:   "Senha muito fraca! Plante uma mais forte.",
	KindNetworkFailure: "Erro de conexão! Verifique sua internet. 🌐",
}

// LoginMessage turns a sign in failure into the alert shown to the user.
// Form validation errors carry their own text.
func LoginMessage(err error) string {
	if fe, ok := asFormError(err); ok {
		return fe.Message
	}
	if msg, ok := loginMessages[KindOf(err)]; ok {
		return msg
	}
	return MsgLoginGeneric
}

// RegisterMessage turns a registration failure into the alert shown to the
// user. Form validation errors carry their own text.
func RegisterMessage(err error) string {
	if fe, ok := asFormError(err); ok {
		return fe.Message
	}
	if msg, ok := registerMessages[KindOf(err)]; ok {
		return msg
	}
	return MsgRegisterGeneric
}
