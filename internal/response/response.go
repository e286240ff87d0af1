package response

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	// Всегда true для успешных ответов
	Success bool `json:"success" example:"true"`

	Message string `json:"message,omitempty" example:"Операция успешно выполнена"`

	// Полезная нагрузка ответа (опционально)
	Data any `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Всегда false для ответов с ошибкой
	Success bool `json:"success" example:"false"`

	// Код ошибки для программной обработки
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Ошибка валидации данных
	Error string `json:"error"`

	// Дополнительные детали об ошибке (опционально)
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	RefreshToken string `json:"refresh_token"`
}

// Ok строит успешный ответ с данными.
func Ok(data any) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// Err строит ответ с ошибкой.
func Err(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Code: code, Error: message}
}
