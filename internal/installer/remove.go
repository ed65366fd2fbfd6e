package installer

import (
	"context"

	"appimage-installer/internal/apperr"
	"appimage-installer/internal/logging"
)

// Remove deletes an installed app after confirmation. Every deletion is
// attempted independently; files that are already gone are not errors.
func (i *Installer) Remove(ctx context.Context, name string) Result {
	res := Result{Op: OpRemove, Name: name}
	log := logging.Logger.With("op", OpRemove, "app", name)

	rec, ok := i.reg.Get(name)
	if !ok {
		return i.reject(res, apperr.NotFound("app "+name+" is not installed", nil))
	}

	if !i.prompter.ConfirmRemove(name) {
		log.Info("removal declined")
		res.Status = StatusCancelled
		return res
	}

	res.warn(removeFile(rec.Path, "bundle"))

	icon := rec.Icon
	if icon == "" {
		icon = i.iconPath(name)
	}
	if i.ownsIcon(icon) {
		res.warn(removeFile(icon, "icon"))
	} else {
		log.Info("leaving unmanaged icon in place", "icon", icon)
	}

	res.warn(i.writer.Remove(name))

	if err := i.reg.Remove(name); err != nil {
		return i.reject(res, err)
	}
	for _, w := range i.persist("remove " + name) {
		res.warn(w)
	}

	log.Info("removed", "warnings", len(res.Warnings))
	res.Status = StatusSucceeded
	return res
}
