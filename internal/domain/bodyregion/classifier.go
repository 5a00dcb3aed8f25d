package bodyregion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// Classifier rebuilds the body region mapping table from two evidence
// sources: ICD-11 chapter membership of crosswalked codes, and keyword
// matches against NAMASTE displays.
type Classifier struct {
	repo  Repository
	tx    TxRunner
	log   zerolog.Logger
	group singleflight.Group
}

func NewClassifier(repo Repository, tx TxRunner, log zerolog.Logger) *Classifier {
	return &Classifier{repo: repo, tx: tx, log: log}
}

// Rebuild drops and regenerates all classifier mappings. Concurrent
// callers share one run. The whole rebuild happens in a single
// transaction so readers never see a partially built table.
func (c *Classifier) Rebuild(ctx context.Context) (*RebuildStats, error) {
	v, err, _ := c.group.Do("rebuild", func() (interface{}, error) {
		var stats *RebuildStats
		err := c.tx.InTx(ctx, func(ctx context.Context) error {
			var err error
			stats, err = c.rebuild(ctx)
			return err
		})
		if err != nil {
			return nil, apperr.BatchAborted("body region rebuild failed", err)
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RebuildStats), nil
}

func (c *Classifier) rebuild(ctx context.Context) (*RebuildStats, error) {
	regions, err := c.repo.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.repo.DeleteAllMappings(ctx); err != nil {
		return nil, err
	}
	pairs, err := c.repo.ConceptPairs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &RebuildStats{Regions: map[string]RegionStats{}}
	for _, region := range regions {
		chapterCount, err := c.mapByChapter(ctx, region.Region, pairs)
		if err != nil {
			return nil, err
		}
		keywordCount, err := c.mapByKeyword(ctx, region.Region)
		if err != nil {
			return nil, err
		}
		stats.Regions[region.Code] = RegionStats{
			ChapterMappings: chapterCount,
			KeywordMappings: keywordCount,
			Total:           chapterCount + keywordCount,
		}
		stats.Total += chapterCount + keywordCount
		c.log.Info().
			Str("region", region.Code).
			Int("chapter_mappings", chapterCount).
			Int("keyword_mappings", keywordCount).
			Msg("region classified")
	}
	return stats, nil
}

// mapByChapter links crosswalked NAMASTE/ICD pairs to the region their
// ICD chapter belongs to, carrying the crosswalk confidence over.
func (c *Classifier) mapByChapter(ctx context.Context, region Region, pairs []ConceptPair) (int, error) {
	count := 0
	for _, pair := range pairs {
		if RegionForICDCode(pair.ICDCode) != region.Code {
			continue
		}
		relevance := pair.Confidence
		if relevance == 0 {
			relevance = 0.9
		}
		created, err := c.repo.InsertMapping(ctx, &Mapping{
			RegionID:       region.ID,
			NamasteCode:    pair.NamasteCode,
			ICDCode:        pair.ICDCode,
			RelevanceScore: relevance,
			MappingType:    "primary",
			Notes:          fmt.Sprintf("ICD Chapter %s → %s", pair.ICDCode[:2], region.Code),
		})
		if err != nil {
			return 0, err
		}
		if created {
			count++
		}
	}
	return count, nil
}

// mapByKeyword links NAMASTE concepts whose display mentions one of the
// region's anatomical terms. These rows carry no ICD code.
func (c *Classifier) mapByKeyword(ctx context.Context, region Region) (int, error) {
	count := 0
	for _, keyword := range KeywordsForRegion(region.Code) {
		matches, err := c.repo.NamasteByKeyword(ctx, keyword, 20)
		if err != nil {
			return 0, err
		}
		for _, match := range matches {
			created, err := c.repo.InsertMapping(ctx, &Mapping{
				RegionID:       region.ID,
				NamasteCode:    match.Code,
				RelevanceScore: 0.7,
				MappingType:    "secondary",
				Notes:          fmt.Sprintf("Keyword match: %q", keyword),
			})
			if err != nil {
				return 0, err
			}
			if created {
				count++
			}
		}
	}
	return count, nil
}
