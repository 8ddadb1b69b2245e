package service

import (
	"fmt"
	"strings"
	"trade_ledger/internal/models"
)

func formatSnapshot(snap models.Snapshot, filter []string) string {
	var b strings.Builder
	if len(snap.Positions) == 0 {
		b.WriteString("📭 Открытых позиций нет\n")
	} else {
		fmt.Fprintf(&b, "*📊 Позиции (%d)*\n\n", len(snap.Positions))
		for i, p := range snap.Positions {
			fmt.Fprintf(&b,
				"%d. `%s` *%s*\n"+
					"   рынок: `%s`\n"+
					"   размер: `%s` @ `%s`\n"+
					"   realized: `%s`\n"+
					"   unrealized: `%s`\n",
				i+1, shortID(p.AssetID), side(p.Size),
				shortID(p.Market),
				p.Size, p.AveragePrice,
				p.RealizedPnL,
				p.UnrealizedPnL,
			)
		}
	}
	if len(filter) > 0 {
		fmt.Fprintf(&b, "\nфильтр: `%s`\n", strings.Join(filter, ", "))
	}
	fmt.Fprintf(&b, "\nсделок: %d, страниц: %d, пропущено: %d",
		snap.Stats.Records, snap.Stats.Pages, snap.Stats.Skipped)
	return b.String()
}

func formatHelp() string {
	return "*trade-ledger*\n\n" +
		"/positions — открытые позиции (из кэша)\n" +
		"/refresh — пересчитать заново\n" +
		"/watch `id1 id2` — показывать только эти asset\n" +
		"/unwatch — сбросить фильтр"
}
