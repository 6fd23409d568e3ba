// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const timeLayout = "2006-01-02 15:04"

var errUsage = errors.New("wrong arguments")

type shellCommand struct {
	usage   string
	summary string
	minArgs int
	run     func(ctx context.Context, args []string) error
}

// errQuit ends the shell without an error.
var errQuit = errors.New("quit")

func (a *App) shellCommands() map[string]shellCommand {
	return map[string]shellCommand{
		"help":    {usage: "help", summary: "show this list", run: a.cmdHelp},
		"whoami":  {usage: "whoami", summary: "show the signed-in account", run: a.cmdWhoAmI},
		"ls":      {usage: "ls", summary: "list collections", run: a.cmdListCollections},
		"mkdir":   {usage: "mkdir <folder|album> <name>", summary: "create a collection", minArgs: 2, run: a.cmdCreateCollection},
		"rename":  {usage: "rename <collection-id> <name>", summary: "rename a collection", minArgs: 2, run: a.cmdRenameCollection},
		"rmdir":   {usage: "rmdir <collection-id>", summary: "delete a collection and its files", minArgs: 1, run: a.cmdDeleteCollection},
		"files":   {usage: "files <collection-id>", summary: "list files of a collection", minArgs: 1, run: a.cmdListFiles},
		"put":     {usage: "put <collection-id> <path>...", summary: "encrypt and upload files", minArgs: 2, run: a.cmdPut},
		"get":     {usage: "get <collection-id> <file-id> [dest]", summary: "download and decrypt a file", minArgs: 2, run: a.cmdGet},
		"rm":      {usage: "rm <file-id>", summary: "delete a file", minArgs: 1, run: a.cmdDeleteFile},
		"refresh": {usage: "refresh", summary: "renew the access token", run: a.cmdRefresh},
		"logout":  {usage: "logout", summary: "wipe keys and leave the shell", run: a.cmdLogout},
		"exit":    {usage: "exit", summary: "same as logout", run: a.cmdLogout},
	}
}

// Shell logs in and reads commands until EOF or logout. When the server
// ends the session the user is asked to log in again.
func (a *App) Shell(ctx context.Context, email string) error {
	email, err := a.resolveEmail(email)
	if err != nil {
		return err
	}
	if err := a.Login(ctx, email); err != nil {
		return err
	}
	defer a.Logout(context.WithoutCancel(ctx))

	fmt.Fprintln(a.out, helpStyle.Render(`Type "help" for the list of commands.`))

	for {
		if reason := a.sessionEnded(); reason != nil {
			a.workers.Stop()
			fmt.Fprintln(a.out, errorStyle.Render("session ended: "+reason.Error()))
			if err := a.Login(ctx, email); err != nil {
				return err
			}
		}

		line, err := a.prompt.ReadLine(titleStyle.Render(email) + "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = a.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(a.out, errorStyle.Render("error: "+err.Error()))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (a *App) sessionEnded() error {
	select {
	case <-a.session.Invalidated():
		return a.session.Err()
	default:
		return nil
	}
}

func (a *App) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := a.shellCommands()[fields[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	args := fields[1:]
	if len(args) < cmd.minArgs {
		return fmt.Errorf("%w, usage: %s", errUsage, cmd.usage)
	}

	log := a.logger.GetChildLogger()
	log.Debug().Str("command", fields[0]).Int("args", len(args)).Msg("shell command")
	return cmd.run(log.WithContext(ctx), args)
}

func (a *App) cmdHelp(_ context.Context, _ []string) error {
	commands := a.shellCommands()
	rows := make([][]string, 0, len(commands))
	for _, name := range []string{"ls", "mkdir", "rename", "rmdir", "files", "put", "get", "rm", "whoami", "refresh", "help", "logout", "exit"} {
		rows = append(rows, []string{commands[name].usage, commands[name].summary})
	}
	fmt.Fprintln(a.out, renderTable([]string{"Command", "Description"}, rows))
	return nil
}

func (a *App) cmdWhoAmI(_ context.Context, _ []string) error {
	tokens := a.session.Tokens()
	fmt.Fprintln(a.out, a.session.Email())
	if !tokens.AccessTokenExpiryTime.IsZero() {
		fmt.Fprintln(a.out, helpStyle.Render("access token valid until "+tokens.AccessTokenExpiryTime.Local().Format(timeLayout)))
	}
	return nil
}

func (a *App) cmdListCollections(ctx context.Context, _ []string) error {
	collections, err := a.services.CollectionService.ListCollections(ctx)
	if err != nil {
		return err
	}
	if len(collections) == 0 {
		fmt.Fprintln(a.out, helpStyle.Render("no collections yet"))
		return nil
	}

	rows := make([][]string, 0, len(collections))
	for _, c := range collections {
		rows = append(rows, []string{c.ID, string(c.Type), c.Name, c.UpdatedAt.Local().Format(timeLayout)})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "Type", "Name", "Updated"}, rows))
	return nil
}

func (a *App) cmdCreateCollection(ctx context.Context, args []string) error {
	created, err := a.services.CollectionService.CreateCollection(ctx, models.CollectionInput{
		Type: models.CollectionType(args[0]),
		Name: strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("created"), created.ID)
	return nil
}

func (a *App) cmdRenameCollection(ctx context.Context, args []string) error {
	renamed, err := a.services.CollectionService.RenameCollection(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s %q\n", successStyle.Render("renamed"), renamed.ID, renamed.Name)
	return nil
}

func (a *App) cmdDeleteCollection(ctx context.Context, args []string) error {
	if err := a.services.CollectionService.DeleteCollection(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("deleted"), args[0])
	return nil
}

func (a *App) cmdListFiles(ctx context.Context, args []string) error {
	key, err := a.services.CollectionService.UnlockCollection(ctx, args[0])
	if err != nil {
		return err
	}
	defer crypto.Wipe(key)

	files, err := a.services.FileService.ListFiles(ctx, args[0], key)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, helpStyle.Render("no files yet"))
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.ID,
			f.Metadata.Name,
			f.Metadata.MimeType,
			strconv.FormatInt(f.Metadata.Size, 10),
			f.ModifiedAt.Local().Format(timeLayout),
		})
	}
	fmt.Fprintln(a.out, renderTable([]string{"ID", "Name", "Type", "Size", "Modified"}, rows))
	return nil
}

func (a *App) cmdPut(ctx context.Context, args []string) error {
	collectionID, paths := args[0], args[1:]

	inputs := make([]models.UploadInput, 0, len(paths))
	for _, path := range paths {
		input, err := readUploadInput(collectionID, path)
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
	}

	key, err := a.services.CollectionService.UnlockCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	defer crypto.Wipe(key)

	records, err := a.services.FileService.UploadMany(ctx, inputs, key)
	for i, record := range records {
		if record.ID == "" {
			continue
		}
		fmt.Fprintf(a.out, "%s %s %s\n", successStyle.Render("uploaded"), record.ID, inputs[i].Metadata.Name)
	}
	return err
}

func (a *App) cmdGet(ctx context.Context, args []string) error {
	collectionID, fileID := args[0], args[1]

	key, err := a.services.CollectionService.UnlockCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	defer crypto.Wipe(key)

	meta, content, err := a.services.FileService.Download(ctx, fileID, key)
	if err != nil {
		return err
	}

	target := ""
	if len(args) > 2 {
		target = args[2]
	}
	dest, err := saveDownload(target, meta.Name, content)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("file_id", fileID).Int("size", len(content)).Msg("file downloaded")
	fmt.Fprintf(a.out, "%s %s (%d bytes)\n", successStyle.Render("saved"), dest, len(content))
	return nil
}

func (a *App) cmdDeleteFile(ctx context.Context, args []string) error {
	if err := a.services.FileService.DeleteFile(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("deleted"), args[0])
	return nil
}

func (a *App) cmdRefresh(ctx context.Context, _ []string) error {
	if err := a.services.AuthService.RefreshTokens(ctx); err != nil {
		return err
	}
	return a.cmdWhoAmI(ctx, nil)
}

func (a *App) cmdLogout(_ context.Context, _ []string) error {
	return errQuit
}

// saveDownload writes content to target, or to name inside target when target
// is a directory or empty. Existing files are never overwritten.
func saveDownload(target, name string, content []byte) (string, error) {
	dest := target
	if info, err := os.Stat(target); target == "" || (err == nil && info.IsDir()) {
		// имя взято из расшифрованных метаданных
		if err := validators.ValidateName(name); err != nil {
			return "", fmt.Errorf("refusing to save %q: %w", name, err)
		}
		dest = filepath.Join(target, name)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// readUploadInput loads path and fills the metadata from the file system.
func readUploadInput(collectionID, path string) (models.UploadInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.UploadInput{}, err
	}
	if info.IsDir() {
		return models.UploadInput{}, fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return models.UploadInput{}, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}

	now := time.Now().UTC()
	return models.UploadInput{
		CollectionID: collectionID,
		Content:      content,
		Metadata: models.FileMetadata{
			Name:       filepath.Base(path),
			MimeType:   mimeType,
			Size:       int64(len(content)),
			CreatedAt:  now,
			ModifiedAt: info.ModTime().UTC(),
		},
	}, nil
}
