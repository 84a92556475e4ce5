package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

var TaskStatuses = []interface{}{StatusPending, StatusInProgress, StatusCompleted}

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user"          json:"user"` // owner, from the access token
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	Status      string             `bson:"status"        json:"status"`
	CreatedAt   time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"    json:"updated_at"`
}

func (t *Task) OwnedBy(uid string) bool { return t.UserID.Hex() == uid }
