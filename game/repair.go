package game

// TickRepair distributes raw_repair = max_repair_points *
// (repair-subsystem-health / max) * dt across up to NumRepairTeams
// simultaneous targets from the front of the FIFO repair queue, each
// getting raw_repair / active / repair_complexity. A subsystem at 0 HP
// is skipped but stays queued; one that reaches max HP is dequeued.
func TickRepair(s *ShipState, class *ShipClass, repairSubsysIdx int, dt float32) {
	if len(s.RepairQueue) == 0 {
		return
	}

	repairHealthFrac := float32(1.0)
	if repairSubsysIdx >= 0 && repairSubsysIdx < len(s.Subsystems) {
		if max := class.Subsystems[repairSubsysIdx].MaxCondition; max > 0 {
			repairHealthFrac = s.Subsystems[repairSubsysIdx].Condition / max
		}
	}
	rawRepair := class.MaxRepairPoints * repairHealthFrac * dt

	active := len(s.RepairQueue)
	if active > class.NumRepairTeams {
		active = class.NumRepairTeams
	}
	if active == 0 {
		return
	}

	next := s.RepairQueue[:0]
	targetsServed := 0
	for _, idx := range s.RepairQueue {
		if targetsServed >= active || idx < 0 || idx >= len(s.Subsystems) {
			next = append(next, idx)
			continue
		}
		cur := &s.Subsystems[idx]
		if cur.Condition <= 0 {
			// Destroyed subsystems stay queued but receive no repair
			// until something else (e.g. a future spec extension)
			// revives them.
			next = append(next, idx)
			continue
		}

		complexity := class.Subsystems[idx].RepairComplexity
		if complexity <= 0 {
			complexity = 1
		}
		cur.Condition += rawRepair / float32(active) / complexity
		targetsServed++

		maxCond := class.Subsystems[idx].MaxCondition
		if cur.Condition >= maxCond {
			cur.Condition = maxCond
			cur.Destroyed = false
			continue // dequeued: reached full health
		}
		next = append(next, idx)
	}
	s.RepairQueue = next

	autoQueueDamaged(s, class)
}

// autoQueueDamaged appends any subsystem below its disabled threshold
// that isn't already in the repair queue.
func autoQueueDamaged(s *ShipState, class *ShipClass) {
	queued := make(map[int]bool, len(s.RepairQueue))
	for _, idx := range s.RepairQueue {
		queued[idx] = true
	}
	for i, sc := range class.Subsystems {
		if queued[i] {
			continue
		}
		if sc.MaxCondition <= 0 {
			continue
		}
		if s.Subsystems[i].Condition/sc.MaxCondition < sc.DisabledThreshold {
			s.RepairQueue = append(s.RepairQueue, i)
		}
	}
}
