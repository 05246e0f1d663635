package main

import (
	"context"
	"time"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:        name,
			Username:    uname,
			Email:       email,
			Role:        role,
			Preferences: user.DefaultPreferences(),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	if uname != "" {
		usr.Username = uname
	}
	usr.Role = role
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil)
	return err
}
