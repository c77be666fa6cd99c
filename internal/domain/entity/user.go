package entity

// UserState состояние оператора в диалоге с ботом
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото листа
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет оператора, общающегося с ботом
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние диалога
}

// NewUser создаёт нового оператора с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние диалога
func (u *User) SetState(state UserState) {
	u.State = state
}
