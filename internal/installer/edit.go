package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/desktop"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/models"
)

// EditRequest describes changes to an installed app. Nil fields and an empty
// IconPath leave the current value alone.
type EditRequest struct {
	NewName  *string
	Comment  *string
	IconPath string
}

// editPlan is a validated EditRequest
type editPlan struct {
	name     string
	newName  string
	rec      models.AppRecord
	iconPath string
	moveIcon bool
	changes  desktop.Changes
}

func (p editPlan) renamed() bool {
	return p.name != p.newName
}

func (i *Installer) plan(name string, req EditRequest) (editPlan, error) {
	rec, ok := i.reg.Get(name)
	if !ok {
		return editPlan{}, apperr.NotFound("app "+name+" is not installed", nil)
	}

	p := editPlan{name: name, newName: name, rec: rec, iconPath: rec.Icon}

	if req.NewName != nil {
		newName := strings.TrimSpace(*req.NewName)
		if newName == "" {
			return editPlan{}, apperr.Validation("new name cannot be empty")
		}
		if strings.ContainsRune(newName, filepath.Separator) {
			return editPlan{}, apperr.Validationf("name %q cannot contain %q", newName, filepath.Separator)
		}
		if err := singleLine("name", newName); err != nil {
			return editPlan{}, err
		}
		if newName != name && i.reg.Has(newName) {
			return editPlan{}, apperr.Validationf("an app named %q is already installed", newName)
		}
		p.newName = newName
	}

	switch {
	case req.IconPath != "":
		if _, err := os.Stat(req.IconPath); err != nil {
			return editPlan{}, apperr.Validationf("icon %s does not exist", req.IconPath)
		}
		p.iconPath = i.iconPath(p.newName)
	case p.renamed() && rec.Icon == i.iconPath(name):
		p.iconPath = i.iconPath(p.newName)
		p.moveIcon = true
	}

	if p.renamed() {
		p.changes.Name = &p.newName
	}
	if req.Comment != nil {
		if err := singleLine("comment", *req.Comment); err != nil {
			return editPlan{}, err
		}
	}
	p.changes.Comment = req.Comment
	if p.iconPath != rec.Icon {
		p.changes.Icon = &p.iconPath
	}
	return p, nil
}

// PreviewEdit returns the desktop entry of name before and after req.
func (i *Installer) PreviewEdit(name string, req EditRequest) (before, after string, err error) {
	p, err := i.plan(name, req)
	if err != nil {
		return "", "", err
	}
	before, _ = i.Entry(name)
	return before, desktop.Update(before, p.changes), nil
}

// Edit renames an app and/or changes its comment or icon.
func (i *Installer) Edit(ctx context.Context, name string, req EditRequest) Result {
	res := Result{Op: OpEdit, Name: name}
	log := logging.Logger.With("op", OpEdit, "app", name)

	p, err := i.plan(name, req)
	if err != nil {
		return i.reject(res, err)
	}

	switch {
	case req.IconPath != "":
		newIcon, err := i.resolver.Import(req.IconPath, p.newName)
		if err != nil {
			return i.reject(res, err)
		}
		if p.rec.Icon != newIcon && i.ownsIcon(p.rec.Icon) {
			res.warn(removeFile(p.rec.Icon, "icon"))
		}
	case p.moveIcon:
		res.warn(i.moveIcon(p.rec.Icon, p.iconPath))
	}

	rec := p.rec
	rec.Icon = p.iconPath
	if req.Comment != nil {
		rec.Comment = *req.Comment
	}

	var stepErr error
	fallback := i.render(p.newName, rec)
	edit := func(content string) string { return desktop.Update(content, p.changes) }
	if err := i.writer.Rewrite(name, p.newName, fallback, edit); err != nil {
		log.Error("failed to rewrite desktop entries", "error", err)
		stepErr = err
	}

	if p.renamed() {
		if err := i.reg.Rename(name, p.newName); err != nil {
			return i.reject(res, err)
		}
		res.Name = p.newName
	}
	if err := i.reg.Upsert(p.newName, rec); err != nil {
		return i.reject(res, err)
	}

	message := "edit " + p.newName
	if p.renamed() {
		message = "rename " + name + " to " + p.newName
	}
	for _, w := range i.persist(message) {
		res.warn(w)
	}

	if stepErr != nil {
		res.Status = StatusFailed
		res.Err = stepErr
		return res
	}
	log.Info("edited", "name", p.newName, "icon", p.iconPath)
	res.Status = StatusSucceeded
	return res
}

// moveIcon renames a managed icon. A missing icon is replaced by the default.
func (i *Installer) moveIcon(from, to string) error {
	err := os.Rename(from, to)
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		logging.Logger.Info("icon missing, using default", "error", apperr.NotFound(from, err))
		return icons.WriteDefault(to)
	}
	return err
}

// Rename is a shorthand for an edit that only changes the name
func (i *Installer) Rename(ctx context.Context, name, newName string) Result {
	return i.Edit(ctx, name, EditRequest{NewName: &newName})
}
