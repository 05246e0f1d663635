package inmemdb

import (
	"sync"

	"github.com/intellilearn/backend/core/course"
	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[string]*course.Course
	}

	masteryTable struct {
		mutex sync.RWMutex
		table map[string]*mastery.Profile
	}

	DB struct {
		user    *userTable
		course  *courseTable
		mastery *masteryTable
	}
)

func NewDB() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		course:  &courseTable{table: make(map[string]*course.Course)},
		mastery: &masteryTable{table: make(map[string]*mastery.Profile)},
	}
}
