package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// FileChangeType — вид изменения файла в пул-реквесте.
type FileChangeType string

const (
	FileAdded    FileChangeType = "added"
	FileModified FileChangeType = "modified"
	FileRemoved  FileChangeType = "removed"
	FileRenamed  FileChangeType = "renamed"
)

func (t FileChangeType) Valid() bool {
	switch t {
	case FileAdded, FileModified, FileRemoved, FileRenamed:
		return true
	}
	return false
}

// ChangeSummary — объем изменений пул-реквеста на момент открытия.
type ChangeSummary struct {
	PullRequestID     int64
	TotalChanges      int
	ChangedFiles      int
	AvgChangesPerFile decimal.Decimal
}

// CommitDensity — плотность коммитов на момент открытия.
type CommitDensity struct {
	PullRequestID    int64
	CommitCount      int
	CommitsPerFile   decimal.Decimal
	CommitsPerChange decimal.Decimal
}

// FileChangeDiversity — распределение файлов по видам изменений.
type FileChangeDiversity struct {
	PullRequestID int64
	AddedCount    int
	ModifiedCount int
	RemovedCount  int
	RenamedCount  int
	AddedRatio    decimal.Decimal
	ModifiedRatio decimal.Decimal
	RemovedRatio  decimal.Decimal
	RenamedRatio  decimal.Decimal
}

// OpenedSnapshot — разовые метрики, вычисляемые при открытии пул-реквеста.
type OpenedSnapshot struct {
	Summary   ChangeSummary
	Density   CommitDensity
	Diversity FileChangeDiversity
}

// SnapshotRepository определяет контракт хранилища разовых метрик.
// Save не перезаписывает уже сохраненный снимок.
type SnapshotRepository interface {
	FindByPRID(ctx context.Context, prID int64) (*OpenedSnapshot, error)
	ExistsByPRID(ctx context.Context, prID int64) (bool, error)
	Save(ctx context.Context, s *OpenedSnapshot) (bool, error)
}

// CalculateChangeSummary считает общий объем и среднее число строк на файл.
func CalculateChangeSummary(prID int64, stats ChangeStats) ChangeSummary {
	total := stats.Additions + stats.Deletions
	return ChangeSummary{
		PullRequestID:     prID,
		TotalChanges:      total,
		ChangedFiles:      stats.ChangedFiles,
		AvgChangesPerFile: ratio(int64(total), int64(stats.ChangedFiles), averageScale),
	}
}

// CalculateCommitDensity считает коммиты на файл и на строку изменений.
func CalculateCommitDensity(prID int64, stats ChangeStats, commitCount int) CommitDensity {
	return CommitDensity{
		PullRequestID:    prID,
		CommitCount:      commitCount,
		CommitsPerFile:   ratio(int64(commitCount), int64(stats.ChangedFiles), densityScale),
		CommitsPerChange: ratio(int64(commitCount), int64(stats.Additions+stats.Deletions), densityScale),
	}
}

// CalculateFileChangeDiversity раскладывает файлы по видам изменений.
func CalculateFileChangeDiversity(prID int64, files []ChangedFile) FileChangeDiversity {
	d := FileChangeDiversity{PullRequestID: prID}
	for _, f := range files {
		switch f.Status {
		case FileAdded:
			d.AddedCount++
		case FileModified:
			d.ModifiedCount++
		case FileRemoved:
			d.RemovedCount++
		case FileRenamed:
			d.RenamedCount++
		}
	}

	total := int64(d.AddedCount + d.ModifiedCount + d.RemovedCount + d.RenamedCount)
	d.AddedRatio = ratio(int64(d.AddedCount), total, ratioScale)
	d.ModifiedRatio = ratio(int64(d.ModifiedCount), total, ratioScale)
	d.RemovedRatio = ratio(int64(d.RemovedCount), total, ratioScale)
	d.RenamedRatio = ratio(int64(d.RenamedCount), total, ratioScale)
	return d
}

// DistinctTypes — число видов изменений, встречающихся в пул-реквесте.
func (d FileChangeDiversity) DistinctTypes() int {
	n := 0
	for _, c := range []int{d.AddedCount, d.ModifiedCount, d.RemovedCount, d.RenamedCount} {
		if c > 0 {
			n++
		}
	}
	return n
}

// CalculateOpenedSnapshot собирает все разовые метрики по событию открытия.
func CalculateOpenedSnapshot(ev PullRequestOpened) OpenedSnapshot {
	return OpenedSnapshot{
		Summary:   CalculateChangeSummary(ev.PullRequestID, ev.ChangeStats),
		Density:   CalculateCommitDensity(ev.PullRequestID, ev.ChangeStats, ev.CommitCount),
		Diversity: CalculateFileChangeDiversity(ev.PullRequestID, ev.Files),
	}
}
