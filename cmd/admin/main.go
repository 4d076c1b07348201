package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"whist-server/internal/util"
	"whist-server/pkg/model"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var command = flag.String("c", "user", "specifies the command (user, promote)")

var stdin = bufio.NewReader(os.Stdin)

func main() {
	flag.Parse()
	ctx := context.Background()

	switch *command {
	case "user":
		email := getEmail()
		if email == "" {
			os.Exit(1)
		}

		password := getPassword()
		if password == "" {
			os.Exit(1)
		}

		nickname, err := getInput("Nickname")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		if nickname == "" {
			nickname = util.GetRandomName()
		}

		user, err := model.CreateUser(ctx, email, nickname, password, "127.0.0.1")
		if err != nil {
			logrus.WithError(err).Fatal("could not create user")
		}

		fmt.Printf("Created user %d (%s)\n", user.ID, user.Nickname)

		promote, err := getInput("Make admin (Y/n)")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		if promote == "" || strings.ToLower(promote)[0] == 'y' {
			promoteUser(ctx, user)
		}
	case "promote":
		input, err := getInput("User ID or email")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		var user *model.User
		if id, convErr := strconv.ParseInt(input, 10, 64); convErr == nil {
			user, err = model.GetUserByID(ctx, id)
		} else {
			user, err = model.GetUserByEmail(ctx, input)
		}

		if err != nil {
			logrus.WithError(err).WithField("user", input).Fatal("could not find user")
		}

		promoteUser(ctx, user)
	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func promoteUser(ctx context.Context, user *model.User) {
	if err := user.SetIsSiteAdmin(ctx, true); err != nil {
		logrus.WithError(err).Fatal("could not promote user to admin")
	}

	fmt.Printf("User %d promoted to admin\n", user.ID)
}

func getPassword() string {
	for {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			continue
		}
		fmt.Println("")

		password := strings.TrimRight(string(pwBytes), "\r\n")

		if password == "" {
			return ""
		}

		if len(password) < 6 {
			_, _ = fmt.Fprintf(os.Stderr, "password must be 6 or more characters\n")
			continue
		}

		return password
	}
}

func getEmail() string {
	for {
		fmt.Print("Email: ")
		str, err := stdin.ReadString('\n')
		if err != nil {
			logrus.WithError(err).Warn("could not read email")
		}

		str = strings.TrimRight(str, "\r\n")

		if str == "" {
			return ""
		}

		if err := checkmail.ValidateFormat(str); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			continue
		}

		return str
	}
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	str, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(str, "\r\n"), nil
}
