// Package confirm brokers yes/no confirmations for destructive actions.
//
// Every call to Broker.Ask registers an independent Prompt under its own id,
// so two users (or two tabs) asking at the same time never overwrite each
// other. A prompt is answered once through Broker.Resolve; the accept action
// runs before waiters are released.
//
//	p := broker.Ask("キャストを削除しますか?", "/casts", func(ctx context.Context) error {
//		return db.WithContext(ctx).Delete(&models.Cast{}, id).Error
//	})
//	return c.Redirect("/confirm/" + p.ID)
package confirm
