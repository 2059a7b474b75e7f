package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

const Exchange = "tasks.events"

type UserRegistered struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
}

type TaskCreated struct {
	TaskID int64              `json:"task_id"`
	UserID primitive.ObjectID `json:"user_id"`
	Title  string             `json:"title"`
}

type TaskToggled struct {
	TaskID int64              `json:"task_id"`
	UserID primitive.ObjectID `json:"user_id"`
	Done   bool               `json:"done"`
}

type TaskDeleted struct {
	TaskID int64              `json:"task_id"`
	UserID primitive.ObjectID `json:"user_id"`
}
