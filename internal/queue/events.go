package queue

const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyUserLinked     = "user.linked"
	KeyTaskCreated    = "task.created"
)

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type UserLoggedIn struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
}

// UserLinked is published when an external identity is attached to an existing account.
type UserLinked struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type TaskCreated struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}
